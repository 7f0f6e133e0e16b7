package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates a dependency is failing but questions may still be answerable.
	Degraded Status = "degraded"
	// Unhealthy indicates no questions can be answered.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	Chunks int
}

// Service coordinates health checks.
type Service struct {
	corpus     CorpusInfo
	embedding  ProviderChecker
	generation ProviderChecker
	cache      CachePinger
}

// New creates a Service. embedding, generation and cache can be nil.
func New(corpus CorpusInfo, embedding, generation ProviderChecker, cache CachePinger) *Service {
	return &Service{corpus: corpus, embedding: embedding, generation: generation, cache: cache}
}

// Check runs health checks against all components. An empty corpus is
// unhealthy; any other failing component degrades the status.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	chunks := 0
	if s.corpus != nil {
		chunks = s.corpus.Len()
	}
	if chunks > 0 {
		checks["corpus"] = CheckOK
	} else {
		checks["corpus"] = CheckError
		status = Unhealthy
	}

	if s.embedding != nil {
		checks["embedding"] = result(s.embedding.HealthCheck(ctx))
	}
	if s.generation != nil {
		checks["generation"] = result(s.generation.HealthCheck(ctx))
	}
	if s.cache != nil {
		checks["cache"] = result(s.cache.Ping(ctx))
	}

	if status == Healthy {
		for _, v := range checks {
			if v == CheckError {
				status = Degraded
				break
			}
		}
	}

	return Report{Status: status, Checks: checks, Chunks: chunks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
