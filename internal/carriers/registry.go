package carriers

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// CarrierConfig holds configuration shared by carrier constructors
type CarrierConfig struct {
	UserAgent    string
	FetchTimeout time.Duration
	MaxRetries   int

	// Fetcher overrides the default HTTP fetcher when set; tests and
	// callers with their own transport policy inject one here.
	Fetcher Fetcher

	Logger *slog.Logger
}

// Constructor builds a carrier from shared configuration
type Constructor func(cfg *CarrierConfig) Carrier

// Registry maps carrier codes to constructors
type Registry struct {
	constructors map[string]Constructor
	config       *CarrierConfig
}

// NewRegistry creates a registry with the built-in carriers registered
func NewRegistry(config *CarrierConfig) *Registry {
	if config == nil {
		config = &CarrierConfig{}
	}
	if config.UserAgent == "" {
		config.UserAgent = "Mozilla/5.0 (compatible; CourierTracker/1.0)"
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	r := &Registry{
		constructors: make(map[string]Constructor),
		config:       config,
	}
	r.Register(KyungdongCarrierID, NewKyungdongCarrier)
	return r
}

// Register adds a carrier constructor under a code. Registering the same
// code twice replaces the earlier constructor.
func (r *Registry) Register(code string, ctor Constructor) {
	r.constructors[strings.ToLower(code)] = ctor
}

// Create builds the carrier registered under code
func (r *Registry) Create(code string) (Carrier, error) {
	ctor, ok := r.constructors[strings.ToLower(code)]
	if !ok {
		return nil, fmt.Errorf("unsupported carrier: %s", code)
	}
	return ctor(r.config), nil
}

// Available returns the registered carrier codes, sorted
func (r *Registry) Available() []string {
	codes := make([]string, 0, len(r.constructors))
	for code := range r.constructors {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
