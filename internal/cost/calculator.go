package cost

// Compute prices one provider from in. It is pure and applies no rounding;
// the only failure is an effort level outside Low/Medium/High.
func Compute(in Inputs) (Breakdown, error) {
	multiplier, err := in.Multipliers.For(in.Effort)
	if err != nil {
		return Breakdown{}, err
	}

	pages := float64(in.Pages)
	b := Breakdown{
		Storage:  in.SizeGB * in.StorageCostPerGB * float64(in.RetentionMonths),
		OCR:      pages * in.OCRCostPerPage,
		Scanning: pages * in.ScanningCostPerPage,
		Manpower: pages * multiplier,
		License:  in.LicenseCost,
	}
	b.Subtotal = b.Storage + b.OCR + b.Scanning + b.Manpower
	b.Total = b.Subtotal + b.License
	return b, nil
}

// DefaultInputs returns inputs with the stock processing rates and multipliers.
func DefaultInputs() Inputs {
	return Inputs{
		RetentionMonths:     1,
		Effort:              EffortMedium,
		OCRCostPerPage:      DefaultOCRCostPerPage,
		ScanningCostPerPage: DefaultScanningCostPerPage,
		Multipliers:         DefaultMultipliers(),
	}
}
