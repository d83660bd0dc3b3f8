package config

import (
	"os"
	"strconv"
	"strings"
)

// Retrieval policy for the control executor.
type ExecutorMode string

const (
	ExecutorRelevance  ExecutorMode = "relevance"
	ExecutorExhaustive ExecutorMode = "exhaustive"
)

// CategoryKeywords maps a meta-category to the content pattern used when the
// path gives no hint. Checked in KnownCategories order; first match wins.
type CategoryKeywords struct {
	Category string
	Pattern  string //case-insensitive regexp applied to the first chunk
}

// Pipeline carries every knob the control chain needs. It is built once in
// main and handed to each component constructor, no ambient lookups later.
type Pipeline struct {
	ChunkSize          int
	ChunkOverlap       int
	RelevantChunkCount int
	Mode               ExecutorMode

	KnownCategories []string
	Keywords        []CategoryKeywords

	PromptsDir    string
	ReportsDir    string
	TargetBaseDir string

	PassThreshold int //score below this passes, at or above fails
	MaxRiskScore  int
}

func PipelineFromEnv() Pipeline {
	p := Pipeline{
		ChunkSize:          envInt("CHUNK_SIZE", 2000),
		ChunkOverlap:       envInt("CHUNK_OVERLAP", 200),
		RelevantChunkCount: envInt("RELEVANT_CHUNK_COUNT", 3),
		Mode:               ExecutorRelevance,

		KnownCategories: []string{"KYC", "RGPD", "LCBFT", "MIFID", "RSE", "INTERNAL_REPORTING"},
		Keywords: []CategoryKeywords{
			{Category: "KYC", Pattern: `(?i)know\s+your\s+customer|identity\s+verification|beneficial\s+owner`},
			{Category: "RGPD", Pattern: `(?i)rgpd|gdpr|données\s+personnelles|personal\s+data|data\s+subject`},
			{Category: "LCBFT", Pattern: `(?i)blanchiment|money\s+laundering|terrorist\s+financing|aml`},
			{Category: "MIFID", Pattern: `(?i)mifid|investor\s+protection|financial\s+instrument`},
			{Category: "RSE", Pattern: `(?i)\brse\b|csr|responsabilité\s+sociétale|sustainability`},
			{Category: "INTERNAL_REPORTING", Pattern: `(?i)internal\s+report|reporting\s+interne`},
		},

		PromptsDir:    envString("PROMPTS_DIR", "prompts"),
		ReportsDir:    envString("REPORTS_DIR", "reports"),
		TargetBaseDir: envString("TARGET_BASE_DIR", "test_documents"),

		PassThreshold: 5,
		MaxRiskScore:  10,
	}

	if strings.EqualFold(os.Getenv("EXECUTOR_MODE"), string(ExecutorExhaustive)) {
		p.Mode = ExecutorExhaustive
	}
	return p
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envString(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
