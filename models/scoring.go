package models

// ComponentSpecs describes the hardware profile of a listing, supplied by the
// catalog/estimation step rather than extracted from the listing text.
// Treated as an immutable value once built.
type ComponentSpecs struct {
	CPUScore  float64 `json:"cpu_score"`
	GPUScore  float64 `json:"gpu_score"`
	RAMGB     int     `json:"ram_gb"`
	StorageGB int     `json:"storage_gb"`
	GPUVRAMGB int     `json:"gpu_vram_gb"`

	// Multiplicative modifiers, each centered at 1.0.
	PlatformScore  float64 `json:"platform_score"`  // upgrade potential
	LiquidityScore float64 `json:"liquidity_score"` // market liquidity
	ConditionScore float64 `json:"condition_score"` // condition and warranty
}

// ScoringResult is the outcome of valuing one listing. Never mutated after
// creation.
type ScoringResult struct {
	RVI                float64        `json:"rvi"`
	PVR                float64        `json:"pvr"`
	FinalScore         float64        `json:"final_score"`
	Price              float64        `json:"price"`
	VRAMPenaltyApplied bool           `json:"vram_penalty_applied"`
	Components         ComponentSpecs `json:"components"`
}
