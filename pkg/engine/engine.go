// Copyright 2025 Certen Protocol
//
// Engine: the service-facade layer wrapping the core timestamp primitives
// with request correlation, structured logging, and metrics. Nothing below
// the op/timestamp/merkle/detached packages logs or generates IDs — that is
// this layer's job alone.

package engine

import (
	"bytes"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/certen/tsengine/pkg/config"
	"github.com/certen/tsengine/pkg/detached"
	"github.com/certen/tsengine/pkg/merkle"
	"github.com/certen/tsengine/pkg/metrics"
	"github.com/certen/tsengine/pkg/op"
	"github.com/certen/tsengine/pkg/serialize"
	"github.com/certen/tsengine/pkg/timestamp"
)

// Engine coordinates the core proof-tree operations behind a single
// request-scoped logging and metrics surface.
type Engine struct {
	cfg *config.EngineConfig
	reg *metrics.Registry

	logger *log.Logger
}

// Config holds the dependencies an Engine is built from.
type Config struct {
	EngineConfig *config.EngineConfig
	Metrics      *metrics.Registry
	Logger       *log.Logger
}

// DefaultConfig returns a Config with sane defaults applied.
func DefaultConfig() *Config {
	cfg := &config.EngineConfig{}
	cfg.ApplyDefaults()
	return &Config{
		EngineConfig: cfg,
		Logger:       log.New(log.Writer(), "[Engine] ", log.LstdFlags),
	}
}

// New creates an Engine from cfg, filling in any missing dependency with its
// default.
func New(cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.EngineConfig == nil {
		return nil, fmt.Errorf("engine: EngineConfig is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(log.Writer(), "[Engine] ", log.LstdFlags)
	}

	return &Engine{cfg: cfg.EngineConfig, reg: cfg.Metrics, logger: cfg.Logger}, nil
}

// defaultCryptoOp resolves the configured default crypto op to its
// constructor, falling back to SHA-256 for an unrecognized or empty setting.
func (e *Engine) defaultCryptoOp() op.Op {
	switch e.cfg.Crypto.DefaultOp {
	case "sha1":
		return op.SHA1()
	case "ripemd160":
		return op.RIPEMD160()
	case "keccak256":
		return op.Keccak256()
	default:
		return op.SHA256()
	}
}

// NewDetachedFile builds a detached timestamp for fileDigest using the
// engine's configured default crypto op, logging the request under a fresh
// correlation ID.
func (e *Engine) NewDetachedFile(fileDigest []byte) (*detached.File, error) {
	reqID := uuid.New()
	e.logger.Printf("req=%s new detached file digest_len=%d", reqID, len(fileDigest))

	if len(fileDigest) < e.cfg.Detached.MinDigestLength || len(fileDigest) > e.cfg.Detached.MaxDigestLength {
		e.logger.Printf("req=%s rejected: digest length %d out of configured bounds [%d,%d]",
			reqID, len(fileDigest), e.cfg.Detached.MinDigestLength, e.cfg.Detached.MaxDigestLength)
		return nil, fmt.Errorf("engine: digest length %d outside configured bounds [%d,%d]",
			len(fileDigest), e.cfg.Detached.MinDigestLength, e.cfg.Detached.MaxDigestLength)
	}

	return detached.New(e.defaultCryptoOp(), fileDigest), nil
}

// Merge merges incoming into existing, recording the outcome if a metrics
// registry is configured.
func (e *Engine) Merge(reqID uuid.UUID, existing, incoming *timestamp.Timestamp) error {
	err := existing.Merge(incoming)
	if e.reg != nil {
		e.reg.ObserveMerge(err)
	}
	if err != nil {
		e.logger.Printf("req=%s merge failed: %v", reqID, err)
		return err
	}
	e.logger.Printf("req=%s merge ok", reqID)
	return nil
}

// Encode serializes t to its canonical wire form, recording the time spent
// if a metrics registry is configured.
func (e *Engine) Encode(reqID uuid.UUID, t *timestamp.Timestamp) ([]byte, error) {
	start := time.Now()
	var buf bytes.Buffer
	err := t.Serialize(serialize.NewWriter(&buf))
	if e.reg != nil {
		e.reg.ObserveEncode(start)
	}
	if err != nil {
		e.logger.Printf("req=%s encode failed: %v", reqID, err)
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode is the inverse of Encode: it parses wire bytes back into a
// Timestamp rooted at initialMsg, recording the time spent if a metrics
// registry is configured.
func (e *Engine) Decode(reqID uuid.UUID, wire []byte, initialMsg []byte) (*timestamp.Timestamp, error) {
	start := time.Now()
	t, err := timestamp.Deserialize(serialize.NewReader(bytes.NewReader(wire)), initialMsg)
	if e.reg != nil {
		e.reg.ObserveDecode(start)
	}
	if err != nil {
		e.logger.Printf("req=%s decode failed: %v", reqID, err)
		return nil, err
	}
	e.logger.Printf("req=%s decode ok", reqID)
	return t, nil
}

// Aggregate rolls leaves into a single mountain-range tip via binop (nil
// defaults to SHA-256 concatenation), recording leaf-count and error metrics.
func (e *Engine) Aggregate(leaves []*timestamp.Timestamp, binop func(l, r *timestamp.Timestamp) (*timestamp.Timestamp, error)) (*timestamp.Timestamp, error) {
	reqID := uuid.New()
	e.logger.Printf("req=%s aggregating %d leaves", reqID, len(leaves))

	tip, err := merkle.MakeMerkleTree(leaves, binop)
	if e.reg != nil {
		e.reg.ObserveMerkleBuild(len(leaves), err)
	}
	if err != nil {
		e.logger.Printf("req=%s aggregate failed: %v", reqID, err)
		return nil, err
	}
	return tip, nil
}
