package staticdir

import "github.com/switchyard-ai/switchyard/pkg/domain"

// DefaultDataset returns the built-in sample book of business. The records
// cross-reference each other (policies to customers, bills and claims to
// policies) so multi-step conversations resolve end to end.
func DefaultDataset() Dataset {
	return Dataset{
		Policies: []domain.Policy{
			{
				Number: "POL000001", CustomerID: "CUST100", HolderName: "Maria Alvarez",
				Type: "auto", Status: "active", PremiumAmount: 128.50, BillingFrequency: "monthly",
				EffectiveDate: "2025-01-01", ExpiryDate: "2026-01-01",
			},
			{
				Number: "POL000002", CustomerID: "CUST100", HolderName: "Maria Alvarez",
				Type: "home", Status: "active", PremiumAmount: 86.00, BillingFrequency: "monthly",
				EffectiveDate: "2024-09-15", ExpiryDate: "2025-09-15",
			},
			{
				Number: "POL000003", CustomerID: "CUST204", HolderName: "Jerome Okafor",
				Type: "life", Status: "active", PremiumAmount: 45.25, BillingFrequency: "quarterly",
				EffectiveDate: "2023-03-10", ExpiryDate: "2043-03-10",
			},
			{
				Number: "POL000004", CustomerID: "CUST311", HolderName: "Dana Whitfield",
				Type: "auto", Status: "lapsed", PremiumAmount: 152.75, BillingFrequency: "monthly",
				EffectiveDate: "2024-05-01", ExpiryDate: "2025-05-01",
			},
		},
		AutoPolicies: []domain.AutoPolicyDetails{
			{
				Number: "POL000001", VehicleMake: "Toyota", VehicleModel: "Corolla",
				VehicleYear: 2021, Deductible: 500, CollisionCovered: true,
			},
			{
				Number: "POL000004", VehicleMake: "Ford", VehicleModel: "Ranger",
				VehicleYear: 2018, Deductible: 1000, CollisionCovered: false,
			},
		},
		Bills: []domain.Bill{
			{ID: "BILL2025-0601", PolicyNumber: "POL000001", AmountDue: 128.50, DueDate: "2025-07-01", Status: "pending"},
			{ID: "BILL2025-0515", PolicyNumber: "POL000002", AmountDue: 86.00, DueDate: "2025-06-15", Status: "pending"},
			{ID: "BILL2025-0410", PolicyNumber: "POL000003", AmountDue: 135.75, DueDate: "2025-07-10", Status: "pending"},
			{ID: "BILL2025-0301", PolicyNumber: "POL000004", AmountDue: 152.75, DueDate: "2025-04-01", Status: "overdue"},
		},
		Payments: map[string][]domain.Payment{
			"POL000001": {
				{Date: "2025-06-01", Amount: 128.50, Method: "card", Status: "settled"},
				{Date: "2025-05-01", Amount: 128.50, Method: "card", Status: "settled"},
				{Date: "2025-04-01", Amount: 128.50, Method: "bank transfer", Status: "settled"},
			},
			"POL000003": {
				{Date: "2025-04-10", Amount: 135.75, Method: "bank transfer", Status: "settled"},
			},
		},
		Claims: []domain.Claim{
			{
				ID: "CLM1001", PolicyNumber: "POL000001", Type: "collision", Status: "under review",
				FiledDate: "2025-05-20", Amount: 2400, Description: "Rear-end collision at low speed, bumper damage.",
			},
			{
				ID: "CLM1002", PolicyNumber: "POL000001", Type: "glass", Status: "settled",
				FiledDate: "2025-01-11", Amount: 350, Description: "Windshield chip repair.",
			},
			{
				ID: "CLM1003", PolicyNumber: "POL000002", Type: "water damage", Status: "approved",
				FiledDate: "2025-03-02", Amount: 5200, Description: "Burst pipe in the kitchen.",
			},
		},
		FAQs: []FAQ{
			{
				Question: "What does life insurance cover?",
				Answer:   "Life insurance pays a benefit to your beneficiaries if you pass away while the policy is active. Term policies cover a fixed period; whole life covers your lifetime.",
			},
			{
				Question: "What is a deductible?",
				Answer:   "A deductible is the amount you pay out of pocket before your coverage starts paying. Higher deductibles usually mean lower premiums.",
			},
			{
				Question: "How do I file a claim?",
				Answer:   "You can file a claim through your online account or by calling support. Have your policy number, the date of the incident, and any photos ready.",
			},
			{
				Question: "What happens if I miss a premium payment?",
				Answer:   "Most policies include a grace period, typically 30 days. If payment is not received by the end of the grace period, the policy may lapse.",
			},
			{
				Question: "Does my auto policy cover a rental car?",
				Answer:   "Rental coverage depends on your policy options. Collision and liability coverage often extend to short-term rentals; check your declarations page.",
			},
			{
				Question: "How are premiums calculated?",
				Answer:   "Premiums reflect the risk of the policy: coverage amount, deductible, claim history, and for auto policies the vehicle and driving record.",
			},
		},
	}
}
