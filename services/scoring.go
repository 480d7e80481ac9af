package services

import (
	"fmt"
	"math"

	"market-scout/config"
	"market-scout/models"
	"market-scout/utils"
)

// ScoringConfig is the immutable parameter set driving the valuation engine.
type ScoringConfig struct {
	CPUWeight   float64
	GPUWeight   float64
	OtherWeight float64

	VRAMPenaltyThreshold int
	VRAMPenaltyFactor    float64
}

// ScoringConfigFrom derives the valuation parameters from the application
// config.
func ScoringConfigFrom(cfg *config.Config) ScoringConfig {
	return ScoringConfig{
		CPUWeight:            cfg.CPUWeight,
		GPUWeight:            cfg.GPUWeight,
		OtherWeight:          cfg.OtherWeight,
		VRAMPenaltyThreshold: cfg.VRAMPenaltyThreshold,
		VRAMPenaltyFactor:    cfg.VRAMPenaltyFactor,
	}
}

// Validate checks the configuration-time contract: weights sum to 1.0 and the
// penalty actually penalizes.
func (c ScoringConfig) Validate() error {
	sum := c.CPUWeight + c.GPUWeight + c.OtherWeight
	if math.Abs(sum-1.0) > 1e-3 {
		return fmt.Errorf("scoring weights must sum to 1.0, got %.4f", sum)
	}
	if c.VRAMPenaltyFactor >= 1.0 || c.VRAMPenaltyFactor <= 0 {
		return fmt.Errorf("vram penalty factor must be in (0, 1), got %.2f", c.VRAMPenaltyFactor)
	}
	if c.VRAMPenaltyThreshold < 0 {
		return fmt.Errorf("vram penalty threshold must be non-negative, got %d", c.VRAMPenaltyThreshold)
	}
	return nil
}

// ScoringEngine computes RVI (Resale Value Index) and PVR (Price-to-Value
// Ratio) for listings. Stateless apart from its read-only config; safe for
// concurrent use.
type ScoringEngine struct {
	cfg    ScoringConfig
	logger *utils.Logger
}

// NewScoringEngine validates the config and returns a ready engine.
func NewScoringEngine(cfg ScoringConfig, logger *utils.Logger) (*ScoringEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scoring config: %w", err)
	}
	logger.Info("[scoring] Engine ready — weights cpu=%.2f gpu=%.2f other=%.2f, vram threshold=%dGB factor=%.2f",
		cfg.CPUWeight, cfg.GPUWeight, cfg.OtherWeight, cfg.VRAMPenaltyThreshold, cfg.VRAMPenaltyFactor)
	return &ScoringEngine{cfg: cfg, logger: logger}, nil
}

// vramPenalized reports whether the low-VRAM markdown applies. A VRAM of
// exactly 0 means "no discrete GPU" and is never penalized.
func (e *ScoringEngine) vramPenalized(specs models.ComponentSpecs) bool {
	return specs.GPUVRAMGB > 0 && specs.GPUVRAMGB <= e.cfg.VRAMPenaltyThreshold
}

// CalculateRVI computes the Resale Value Index:
//
//	RVI = (cpu×wCPU + gpu×wGPU + other×wOther) × platform × liquidity × condition
//
// with a multiplicative low-VRAM penalty on top. The "other" term is a
// saturating blend of RAM and storage capacity, capped at 100.
func (e *ScoringEngine) CalculateRVI(specs models.ComponentSpecs) float64 {
	otherScore := math.Min(
		(float64(specs.RAMGB)/32.0)*50+(float64(specs.StorageGB)/1000.0)*50,
		100.0,
	)

	baseRVI := specs.CPUScore*e.cfg.CPUWeight +
		specs.GPUScore*e.cfg.GPUWeight +
		otherScore*e.cfg.OtherWeight

	rvi := baseRVI * specs.PlatformScore * specs.LiquidityScore * specs.ConditionScore

	if e.vramPenalized(specs) {
		rvi *= e.cfg.VRAMPenaltyFactor
		e.logger.Debug("[scoring] VRAM penalty applied: %dGB ≤ %dGB threshold",
			specs.GPUVRAMGB, e.cfg.VRAMPenaltyThreshold)
	}

	return rvi
}

// CalculatePVR computes the Price-to-Value Ratio (higher favors the buyer).
// A non-positive price yields 0 rather than an error; ScoreListing rejects
// such prices before this is reached.
func (e *ScoringEngine) CalculatePVR(rvi, price float64) float64 {
	if price <= 0 {
		e.logger.Warn("[scoring] Invalid price for PVR calculation: %.2f", price)
		return 0
	}
	return rvi / price
}

// ScoreListing values a complete listing. The price must be positive; a
// non-positive price is an input-validation error the caller should treat as
// fatal for the listing, not retryable.
func (e *ScoringEngine) ScoreListing(price float64, specs models.ComponentSpecs) (*models.ScoringResult, error) {
	if price <= 0 {
		return nil, fmt.Errorf("price must be positive, got %.2f", price)
	}

	rvi := e.CalculateRVI(specs)
	pvr := e.CalculatePVR(rvi, price)

	result := &models.ScoringResult{
		RVI:                rvi,
		PVR:                pvr,
		FinalScore:         pvr * 1000, // scaled for readable ranking
		Price:              price,
		VRAMPenaltyApplied: e.vramPenalized(specs),
		Components:         specs,
	}

	e.logger.Debug("[scoring] rvi=%.2f pvr=%.4f final=%.2f penalty=%v",
		result.RVI, result.PVR, result.FinalScore, result.VRAMPenaltyApplied)

	return result, nil
}

// DemoComponents returns a reference hardware profile, used by the demo mode.
func DemoComponents() models.ComponentSpecs {
	return models.ComponentSpecs{
		CPUScore:       85.0, // e.g. Intel i5-12400F
		GPUScore:       92.0, // e.g. RTX 3070
		RAMGB:          16,
		StorageGB:      500,
		GPUVRAMGB:      8,
		PlatformScore:  1.1,
		LiquidityScore: 1.0,
		ConditionScore: 0.9,
	}
}
