package services

import (
	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
)

// clinicSchema is a trimmed clinic-visit form used across service tests.
func clinicSchema() *domain.Schema {
	return &domain.Schema{
		Name:     "clinic-visit",
		Title:    "Clinic Visit",
		Resource: "clinic-visits",
		Fields: []domain.FieldDef{
			{Name: "empNo", Kind: domain.FieldIdentifier, Required: true},
			{Name: "employeeName", Kind: domain.FieldText, ReadOnly: true},
			{Name: "emiratesId", Kind: domain.FieldText, ReadOnly: true},
			{Name: "mobileNumber", Kind: domain.FieldText},
			{Name: "visitDate", Kind: domain.FieldDate, Required: true},
			{Name: "temperature", Kind: domain.FieldNumber},
			{Name: "pulse", Kind: domain.FieldNumber},
			{Name: "primaryDiagnosis", Kind: domain.FieldText, Suggest: "diagnosis"},
			{Name: "referral", Kind: domain.FieldBool},
			{Name: "referralCode", Kind: domain.FieldText},
			{Name: "referralType", Kind: domain.FieldText},
			{Name: "sickLeave", Kind: domain.FieldBool},
			{Name: "leaveFrom", Kind: domain.FieldDate},
			{Name: "leaveTo", Kind: domain.FieldDate},
			{Name: "totalDays", Kind: domain.FieldNumber, ReadOnly: true},
			{Name: "ipAdmissionHospital", Kind: domain.FieldText},
			{Name: "ipAdmissionDate", Kind: domain.FieldDate},
		},
		Lists: []domain.ListDef{
			{
				Name:    "medicines",
				KeepOne: true,
				Fields: []domain.FieldDef{
					{Name: "medicineName", Kind: domain.FieldText, Suggest: "medicine"},
					{Name: "course", Kind: domain.FieldText},
					{Name: "expiryDate", Kind: domain.FieldDate},
				},
			},
			{
				Name:    "referrals",
				KeepOne: true,
				Fields: []domain.FieldDef{
					{Name: "hospital", Kind: domain.FieldText},
					{Name: "specialty", Kind: domain.FieldText},
				},
				Children: []domain.ListDef{{
					Name:    "followUpVisits",
					KeepOne: true,
					Fields:  []domain.FieldDef{{Name: "visitDate", Kind: domain.FieldDate}, {Name: "remarks", Kind: domain.FieldText}},
				}},
			},
			{Name: "secondaryDiagnosis", Scalar: true, KeepOne: true},
			{Name: "nurseAssessment", Scalar: true, KeepOne: true},
		},
		Blocks: []domain.BlockDef{
			{Name: "referral", Gate: "referral", Fields: []string{"referralCode", "referralType"}, Lists: []string{"referrals"}},
			{Name: "ipAdmission", Fields: []string{"ipAdmissionHospital", "ipAdmissionDate"}},
		},
		Derivations: []domain.Derivation{
			{Target: "totalDays", Start: "leaveFrom", End: "leaveTo", Rule: domain.DayRuleInclusive},
		},
		Lookup: &domain.LookupDef{
			Trigger: "empNo",
			Fields: map[string]string{
				domain.PatientAttrName:         "employeeName",
				domain.PatientAttrEmiratesID:   "emiratesId",
				domain.PatientAttrMobileNumber: "mobileNumber",
			},
		},
		SyncPatient: true,
	}
}
