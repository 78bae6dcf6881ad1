package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kyc-verifier/api/internal/domain"
	"kyc-verifier/api/internal/extract"
	"kyc-verifier/api/internal/identity"
	"kyc-verifier/api/internal/imageprep"
	"kyc-verifier/api/internal/llm"
	"kyc-verifier/api/internal/logging"
	"kyc-verifier/api/internal/metrics"
	"kyc-verifier/api/internal/ocr"
)

const (
	OpProcessDocument = "pipeline.process_document"
	OpVerifyIdentity  = "pipeline.verify_identity"
)

// Pipeline extracts DocumentFields from scans and compares them with user claims.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	adapter    *extract.Adapter
	recognizer ocr.Recognizer
	comparator *identity.Comparator
	logger     *zap.Logger
	metrics    *metrics.Metrics
	promptDir  string
}

type Option func(*Pipeline)

// WithRecognizer enables the text-relay strategy.
func WithRecognizer(r ocr.Recognizer) Option {
	return func(p *Pipeline) { p.recognizer = r }
}

func WithComparator(c *identity.Comparator) Option {
	return func(p *Pipeline) { p.comparator = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithPromptDir overrides the system prompts from files under dir.
func WithPromptDir(dir string) Option {
	return func(p *Pipeline) { p.promptDir = dir }
}

func New(oracle llm.Oracle, opts ...Option) *Pipeline {
	p := &Pipeline{adapter: extract.NewAdapter(oracle)}
	for _, o := range opts {
		o(p)
	}
	if p.comparator == nil {
		p.comparator = identity.New(nil)
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	p.logger = p.logger.Named("pipeline")
	return p
}

// ProcessDocument normalizes image for the named strategy and extracts its fields.
// An unknown strategy fails before any external call.
func (p *Pipeline) ProcessDocument(ctx context.Context, image []byte, strategy string) (domain.DocumentFields, error) {
	requestID := RequestIDFromContext(ctx)
	return p.processDocument(ctx, requestID, image, strategy)
}

// VerifyIdentity compares a claim with an extracted record. It makes no external calls.
func (p *Pipeline) VerifyIdentity(claim domain.UserClaim, doc *domain.DocumentFields) (domain.ComparisonResult, error) {
	return p.verifyIdentity(uuid.NewString(), claim, doc)
}

// Verify runs extraction and comparison under one request id. The claim is checked
// before the document is processed.
func (p *Pipeline) Verify(ctx context.Context, image []byte, strategy string, claim domain.UserClaim) (domain.ComparisonResult, domain.DocumentFields, error) {
	requestID := RequestIDFromContext(ctx)
	if err := claim.Validate(); err != nil {
		p.metrics.IncrementVerification(outcome(err))
		return domain.ComparisonResult{}, domain.DocumentFields{}, logging.NewOperationError(OpVerifyIdentity, requestID, err)
	}
	fields, err := p.processDocument(ctx, requestID, image, strategy)
	if err != nil {
		return domain.ComparisonResult{}, domain.DocumentFields{}, err
	}
	res, err := p.verifyIdentity(requestID, claim, &fields)
	return res, fields, err
}

func (p *Pipeline) processDocument(ctx context.Context, requestID string, image []byte, strategy string) (domain.DocumentFields, error) {
	start := time.Now()
	log := logging.WithOperation(p.logger, OpProcessDocument, requestID)
	label := "unknown"

	fields, err := func() (domain.DocumentFields, error) {
		kind, err := extract.ParseKind(strategy)
		if err != nil {
			return domain.DocumentFields{}, err
		}
		label = string(kind)
		strat, err := extract.Resolve(kind, p.recognizer, p.promptDir)
		if err != nil {
			return domain.DocumentFields{}, err
		}
		img, err := imageprep.Normalize(image, strat.Profile())
		if err != nil {
			return domain.DocumentFields{}, err
		}
		req, err := strat.BuildRequest(ctx, img)
		if err != nil {
			return domain.DocumentFields{}, err
		}
		return p.adapter.RequestStructuredFields(ctx, req)
	}()

	p.metrics.ObserveExtraction(label, outcome(err), start)
	if err != nil {
		wrapped := logging.NewOperationError(OpProcessDocument, requestID, err)
		log.Error("document processing failed",
			zap.String("strategy", label),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(wrapped))
		return domain.DocumentFields{}, wrapped
	}
	log.Info("document processed",
		zap.String("strategy", label),
		zap.Int("image_bytes", len(image)),
		zap.Duration("elapsed", time.Since(start)))
	return fields, nil
}

func (p *Pipeline) verifyIdentity(requestID string, claim domain.UserClaim, doc *domain.DocumentFields) (domain.ComparisonResult, error) {
	log := logging.WithOperation(p.logger, OpVerifyIdentity, requestID)

	ev, err := p.comparator.Evaluate(claim, doc)
	if err != nil {
		p.metrics.IncrementVerification(outcome(err))
		wrapped := logging.NewOperationError(OpVerifyIdentity, requestID, err)
		log.Warn("identity comparison failed", zap.Error(wrapped))
		return domain.ComparisonResult{}, wrapped
	}

	res := domain.ComparisonResult{IsVerified: ev.Verified()}
	if res.IsVerified {
		p.metrics.IncrementVerification("verified")
	} else {
		p.metrics.IncrementVerification("rejected")
	}
	log.Info("identity compared",
		zap.Bool("verified", res.IsVerified),
		zap.Strings("failed_rules", ev.Failed()))
	return res, nil
}

// outcome is the metrics label for err.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrConfiguration):
		return "configuration_error"
	case errors.Is(err, domain.ErrDecode):
		return "decode_error"
	case errors.Is(err, domain.ErrOCR):
		return "ocr_error"
	case errors.Is(err, domain.ErrExtraction):
		return "extraction_error"
	case errors.Is(err, domain.ErrComparison):
		return "comparison_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
