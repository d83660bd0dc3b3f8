package store

import (
	"context"
	"sync"
)

type InMemoryRunHistoryStore struct {
	runLock *sync.RWMutex
	runMap  map[string][]string
}

func InitInMemoryRunHistoryStore() *InMemoryRunHistoryStore {
	return &InMemoryRunHistoryStore{
		runLock: new(sync.RWMutex),
		runMap:  make(map[string][]string),
	}
}

func (store *InMemoryRunHistoryStore) AppendRun(ctx context.Context, documentKey string, reportPath string) error {
	store.runLock.Lock()
	defer store.runLock.Unlock()
	store.runMap[documentKey] = append(store.runMap[documentKey], reportPath)
	return nil
}

func (store *InMemoryRunHistoryStore) GetRuns(ctx context.Context, documentKey string) ([]string, error) {
	store.runLock.RLock()
	defer store.runLock.RUnlock()
	runs := make([]string, len(store.runMap[documentKey]))
	copy(runs, store.runMap[documentKey])
	return runs, nil
}
