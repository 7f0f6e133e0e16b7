package health

import "context"

// CorpusInfo reports the size of the loaded corpus.
type CorpusInfo interface {
	Len() int
}

// ProviderChecker checks availability of an external model provider.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}

// CachePinger checks the optional shared cache.
type CachePinger interface {
	Ping(ctx context.Context) error
}
