package summarize

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"recap/internal/pricing"
)

var (
	errNilSummarizer = errors.New("orchestrator: nil summarizer")
	errMissingModels = errors.New("orchestrator: primary, secondary, and synthesis models are required")
	errBadStrategy   = errors.New("orchestrator: unknown fallback strategy")
)

const (
	// approxCharsPerToken drives the pre-flight cost gate. It deliberately
	// overestimates token counts for dense prose so long transcripts trip
	// the gate early rather than mid-pipeline.
	approxCharsPerToken = 4

	// groundingExcerptChars caps the transcript slice handed to the
	// synthesis prompt for conflict resolution.
	groundingExcerptChars = 10000

	defaultCreatorContext = "No additional creator context was provided."
)

// Config holds the model assignments and gating knobs for one orchestrator.
type Config struct {
	PrimaryModel   string
	SecondaryModel string
	SynthesisModel string

	// CostThresholdTokens skips the three-call pipeline when the estimated
	// input token count exceeds it. Zero disables the gate.
	CostThresholdTokens int

	// FallbackStrategy picks the single model used when the gate trips.
	FallbackStrategy Strategy

	// SynthesisTemplatePath overrides the embedded synthesis template.
	SynthesisTemplatePath string
}

// Orchestrator runs the multi-model summarization pipeline: two independent
// summaries merged by a synthesis model, with cost gating and error
// fallbacks. Summarize never returns an error; total failure yields a
// placeholder result so the rest of the pipeline keeps moving.
type Orchestrator struct {
	summarizer *Summarizer
	synthesis  *SynthesisTemplate
	estimator  *pricing.Estimator
	logger     *slog.Logger
	cfg        Config

	now func() time.Time
}

// NewOrchestrator wires an orchestrator. estimator may be nil, in which case
// the embedded price table is used.
func NewOrchestrator(summarizer *Summarizer, estimator *pricing.Estimator, logger *slog.Logger, cfg Config) (*Orchestrator, error) {
	if summarizer == nil {
		return nil, errNilSummarizer
	}
	if strings.TrimSpace(cfg.PrimaryModel) == "" ||
		strings.TrimSpace(cfg.SecondaryModel) == "" ||
		strings.TrimSpace(cfg.SynthesisModel) == "" {
		return nil, errMissingModels
	}
	strategy, ok := ParseStrategy(string(cfg.FallbackStrategy))
	if !ok || strategy == StrategySingleModel {
		return nil, errBadStrategy
	}
	cfg.FallbackStrategy = strategy

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if estimator == nil {
		estimator = pricing.NewEstimator(nil, logger)
	}
	synthesis, err := LoadSynthesisTemplate(cfg.SynthesisTemplatePath)
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		summarizer: summarizer,
		synthesis:  synthesis,
		estimator:  estimator,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}, nil
}

// Summarize produces the final summary for one transcript. The returned
// Result always carries a non-empty FinalSummary.
func (o *Orchestrator) Summarize(ctx context.Context, content, creatorContext string) Result {
	start := o.now()
	usage := UsageMap{}

	result := o.run(ctx, content, creatorContext, usage)

	if result.FinalSummary == FailurePlaceholder {
		// Total failure bills nothing: partial calls that led nowhere are
		// not reported as a cost of this summary.
		result.CostEstimate = 0
		result.TokenUsage = nil
	} else {
		result.CostEstimate = o.estimator.Estimate(usage.Records())
		if len(usage) > 0 {
			result.TokenUsage = usage
		}
	}
	result.ProcessingSeconds = roundSeconds(o.now().Sub(start))
	return result
}

func (o *Orchestrator) run(ctx context.Context, content, creatorContext string, usage UsageMap) Result {
	if strings.TrimSpace(content) == "" {
		o.logger.Warn("no transcript content to summarize")
		return Result{
			FinalSummary: NoContentMessage,
			Method:       MethodSingle,
		}
	}
	if strings.TrimSpace(creatorContext) == "" {
		creatorContext = defaultCreatorContext
	}

	if o.gateTripped(content) {
		return o.fallback(ctx, content, usage)
	}
	return o.fullPipeline(ctx, content, creatorContext, usage)
}

// gateTripped estimates input tokens from character count and reports
// whether the configured threshold is exceeded.
func (o *Orchestrator) gateTripped(content string) bool {
	if o.cfg.CostThresholdTokens <= 0 {
		return false
	}
	estimated := len(content) / approxCharsPerToken
	if estimated <= o.cfg.CostThresholdTokens {
		return false
	}
	o.logger.Info("cost gate tripped, using fallback strategy",
		slog.Int("estimated_tokens", estimated),
		slog.Int("threshold_tokens", o.cfg.CostThresholdTokens),
		slog.String("strategy", string(o.cfg.FallbackStrategy)),
	)
	return true
}

// fallback runs the single-model path selected by the configured strategy.
func (o *Orchestrator) fallback(ctx context.Context, content string, usage UsageMap) Result {
	model := o.cfg.SynthesisModel
	role := RoleSynthesis
	if o.cfg.FallbackStrategy == StrategyPrimarySummary {
		model = o.cfg.PrimaryModel
		role = RolePrimary
	}

	outcome, err := o.summarizer.Summarize(ctx, content, model)
	if err != nil {
		return o.errorFallback(ctx, content, usage, err)
	}
	recordUsage(usage, role, model, outcome)

	result := Result{
		FinalSummary:     outcome.Text,
		Method:           MethodFallback,
		FallbackUsed:     true,
		FallbackStrategy: o.cfg.FallbackStrategy,
	}
	if role == RolePrimary {
		result.PrimaryModel = model
	} else {
		result.SynthesisModel = model
	}
	return result
}

func (o *Orchestrator) fullPipeline(ctx context.Context, content, creatorContext string, usage UsageMap) Result {
	primary, err := o.summarizer.Summarize(ctx, content, o.cfg.PrimaryModel)
	if err != nil {
		return o.errorFallback(ctx, content, usage, err)
	}
	recordUsage(usage, RolePrimary, o.cfg.PrimaryModel, primary)

	secondary, err := o.summarizer.Summarize(ctx, content, o.cfg.SecondaryModel)
	if err != nil {
		return o.errorFallback(ctx, content, usage, err)
	}
	recordUsage(usage, RoleSecondary, o.cfg.SecondaryModel, secondary)

	result := Result{
		Method:           MethodMultiModel,
		PrimaryModel:     o.cfg.PrimaryModel,
		SecondaryModel:   o.cfg.SecondaryModel,
		PrimarySummary:   primary.Text,
		SecondarySummary: secondary.Text,
	}

	// Placeholder summaries never feed synthesis. With one usable summary
	// the merge step has nothing to merge; with none there is nothing to say.
	if primary.Soft || secondary.Soft {
		o.logger.Warn("skipping synthesis, not enough usable summaries",
			slog.Bool("primary_soft", primary.Soft),
			slog.Bool("secondary_soft", secondary.Soft),
		)
		switch {
		case !primary.Soft:
			result.FinalSummary = primary.Text
		case !secondary.Soft:
			result.FinalSummary = secondary.Text
		default:
			result.FinalSummary = primary.Text
		}
		return result
	}

	excerpt := truncateChars(content, groundingExcerptChars)
	prompt, err := o.synthesis.Format(SynthesisInput{
		CreatorContext:  creatorContext,
		ModelA:          o.cfg.PrimaryModel,
		SummaryA:        primary.Text,
		ModelB:          o.cfg.SecondaryModel,
		SummaryB:        secondary.Text,
		OriginalContent: excerpt,
	})
	if err != nil {
		return o.errorFallback(ctx, content, usage, err)
	}

	synth, err := o.summarizer.Synthesize(ctx, prompt, o.cfg.SynthesisModel)
	if err != nil {
		return o.errorFallback(ctx, content, usage, err)
	}
	recordUsage(usage, RoleSynthesis, o.cfg.SynthesisModel, synth)

	result.SynthesisModel = o.cfg.SynthesisModel
	result.SynthesisSummary = synth.Text
	if synth.Soft {
		// The merge model refused but both inputs are usable; prefer the
		// primary summary over a placeholder.
		o.logger.Warn("synthesis produced no content, using primary summary",
			slog.String("model", o.cfg.SynthesisModel),
		)
		result.FinalSummary = primary.Text
		return result
	}
	result.FinalSummary = synth.Text
	return result
}

// errorFallback is the last resort after a hard failure anywhere in the
// pipeline: one more attempt with the primary model alone, then a
// placeholder.
func (o *Orchestrator) errorFallback(ctx context.Context, content string, usage UsageMap, cause error) Result {
	o.logger.Error("summarization pipeline failed, trying single-model fallback",
		slog.String("model", o.cfg.PrimaryModel),
		slog.Any("error", cause),
	)

	outcome, err := o.summarizer.Summarize(ctx, content, o.cfg.PrimaryModel)
	if err != nil || outcome.Soft {
		if err != nil {
			o.logger.Error("single-model fallback failed",
				slog.String("model", o.cfg.PrimaryModel),
				slog.Any("error", err),
			)
		}
		return Result{
			FinalSummary:     FailurePlaceholder,
			Method:           MethodErrorFallback,
			FallbackUsed:     true,
			FallbackStrategy: StrategySingleModel,
		}
	}
	recordUsage(usage, RolePrimary, o.cfg.PrimaryModel, outcome)

	return Result{
		FinalSummary:     outcome.Text,
		Method:           MethodErrorFallback,
		PrimaryModel:     o.cfg.PrimaryModel,
		FallbackUsed:     true,
		FallbackStrategy: StrategySingleModel,
	}
}

func recordUsage(usage UsageMap, role Role, model string, outcome Outcome) {
	if outcome.Usage.IsZero() {
		return
	}
	usage.Record(role, model, outcome.Usage)
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
