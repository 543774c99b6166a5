package catalog

import (
	"math/rand"

	"github.com/futig/mitr-backend/internal/entity"
)

var referrals = []entity.Referral{
	{Name: "Dr. Amit Sharma", Contact: "+91-9876543210", Position: "Psychologist", Degree: "M.Phil Clinical Psychology"},
	{Name: "Dr. Neha Verma", Contact: "+91-9123456780", Position: "Psychiatrist", Degree: "MD Psychiatry"},
	{Name: "Dr. Rajesh Gupta", Contact: "+91-9988776655", Position: "Counseling Psychologist", Degree: "M.A. Psychology"},
	{Name: "Dr. Priya Nair", Contact: "+91-9012345678", Position: "Child Psychologist", Degree: "Ph.D. Child Psychology"},
	{Name: "Dr. Arjun Mehta", Contact: "+91-9098765432", Position: "Mental Health Therapist", Degree: "MSW, Certified CBT Practitioner"},
}

// Referrals returns every referral contact.
func Referrals() []entity.Referral {
	return append([]entity.Referral(nil), referrals...)
}

// RandomReferral picks one contact uniformly at random.
func RandomReferral() entity.Referral {
	return referrals[rand.Intn(len(referrals))]
}
