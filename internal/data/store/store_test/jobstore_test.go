package store_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/akishore/ComplyAPI/internal/config"
	"github.com/akishore/ComplyAPI/internal/data/redisStore"
	"github.com/akishore/ComplyAPI/internal/data/store"
	"github.com/akishore/ComplyAPI/internal/domain/jobModel"
)

func TestRedisJobStore_Lifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	internalStore := redisStore.NewTestStore(client)
	jobStore := store.TestJobStore(internalStore)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	jobID := "job_abc_123"

	testJob := jobModel.Job{
		Id:     jobID,
		Status: jobModel.JobStatusRunning,
		JobPayload: jobModel.JobPayload{
			TargetPath: "test_documents/KYC/onboarding.pdf",
			Category:   "KYC",
		},
	}

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		err := jobStore.SaveJob(ctx, testJob)
		if err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}

		retrievedJob, found := jobStore.GetJob(ctx, jobID)
		if !found {
			t.Fatal("Job was saved but not found in Redis")
		}

		if retrievedJob.JobPayload.TargetPath != testJob.JobPayload.TargetPath {
			t.Errorf("Data mismatch! Got %s, want %s",
				retrievedJob.JobPayload.TargetPath, testJob.JobPayload.TargetPath)
		}
	})

	t.Run("Get Non-Existent Job", func(t *testing.T) {
		_, found := jobStore.GetJob(ctx, "ghost-id")
		if found {
			t.Error("Expected found=false for non-existent key")
		}
	})

	t.Run("Delete Job", func(t *testing.T) {
		jobStore.DeleteJob(ctx, jobID)

		if mr.Exists(jobID) {
			t.Error("Job still exists in Redis after DeleteJob call")
		}
	})
}

func TestRedisJobStore_Race(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	jobStore := store.TestJobStore(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "race-trace")
	job := jobModel.Job{Id: "race-job"}

	const workers = 50
	for i := 0; i < workers; i++ {
		go func() {
			_ = jobStore.SaveJob(ctx, job)
			_, _ = jobStore.GetJob(ctx, "race-job")
		}()
	}
}

func TestRedisRunHistoryStore_AppendAndGet(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	historyStore := store.TestRunHistoryStore(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "history-trace")
	docKey := "test_documents/KYC/onboarding.pdf"

	if err := historyStore.AppendRun(ctx, docKey, "reports/report_onboarding_1.txt"); err != nil {
		t.Fatalf("AppendRun failed: %v", err)
	}
	if err := historyStore.AppendRun(ctx, docKey, "reports/report_onboarding_2.txt"); err != nil {
		t.Fatalf("AppendRun failed: %v", err)
	}

	runs, err := historyStore.GetRuns(ctx, docKey)
	if err != nil {
		t.Fatalf("GetRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Run count got %d, want 2", len(runs))
	}
	if runs[0] != "reports/report_onboarding_1.txt" || runs[1] != "reports/report_onboarding_2.txt" {
		t.Errorf("Runs out of order: %v", runs)
	}

	if mr.TTL(docKey) <= 0 {
		t.Error("Expected a TTL on the run history list")
	}
}

func TestRedisRunHistoryStore_EmptyHistory(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	historyStore := store.TestRunHistoryStore(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "history-trace")
	runs, err := historyStore.GetRuns(ctx, "never-seen")
	if err != nil {
		t.Fatalf("GetRuns failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("Expected empty history, got %v", runs)
	}
}

func TestInMemoryStores(t *testing.T) {
	ctx := context.Background()

	jobStore := store.InitInMemoryJobStore()
	job := jobModel.Job{Id: "mem-job", Status: jobModel.JobStatusQueued}
	if err := jobStore.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}
	got, found := jobStore.GetJob(ctx, "mem-job")
	if !found || got.Status != jobModel.JobStatusQueued {
		t.Fatalf("GetJob got %+v found=%v", got, found)
	}
	jobStore.DeleteJob(ctx, "mem-job")
	if _, found := jobStore.GetJob(ctx, "mem-job"); found {
		t.Error("Job still present after delete")
	}

	history := store.InitInMemoryRunHistoryStore()
	_ = history.AppendRun(ctx, "doc", "r1")
	_ = history.AppendRun(ctx, "doc", "r2")
	runs, _ := history.GetRuns(ctx, "doc")
	if len(runs) != 2 || runs[0] != "r1" {
		t.Errorf("History got %v", runs)
	}
}
