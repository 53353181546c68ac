package domain

// Record shapes returned by the directory ports. These mirror what the
// upstream systems of record expose; agents fold them into Lookups and phrase
// answers from them.

// Policy is the master record for an insurance policy.
type Policy struct {
	Number           string  `json:"policy_number"`
	CustomerID       string  `json:"customer_id"`
	HolderName       string  `json:"holder_name"`
	Type             string  `json:"policy_type"`
	Status           string  `json:"status"`
	PremiumAmount    float64 `json:"premium_amount"`
	BillingFrequency string  `json:"billing_frequency"`
	EffectiveDate    string  `json:"effective_date"`
	ExpiryDate       string  `json:"expiry_date"`
}

// AutoPolicyDetails carries the vehicle-specific extension of an auto policy.
type AutoPolicyDetails struct {
	Number           string  `json:"policy_number"`
	VehicleMake      string  `json:"vehicle_make"`
	VehicleModel     string  `json:"vehicle_model"`
	VehicleYear      int     `json:"vehicle_year"`
	Deductible       float64 `json:"deductible"`
	CollisionCovered bool    `json:"collision_covered"`
}

// Bill is an open or settled invoice against a policy.
type Bill struct {
	ID           string  `json:"bill_id"`
	PolicyNumber string  `json:"policy_number"`
	AmountDue    float64 `json:"amount_due"`
	DueDate      string  `json:"due_date"`
	Status       string  `json:"status"`
}

// Payment is a historical payment against a policy.
type Payment struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
	Method string  `json:"method"`
	Status string  `json:"status"`
}

// Claim is a filed insurance claim.
type Claim struct {
	ID           string  `json:"claim_id"`
	PolicyNumber string  `json:"policy_number"`
	Type         string  `json:"claim_type"`
	Status       string  `json:"status"`
	FiledDate    string  `json:"filed_date"`
	Amount       float64 `json:"amount"`
	Description  string  `json:"description"`
}
