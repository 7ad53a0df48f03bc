package domain

import "strings"

// Patient attribute names used by lookup definitions.
const (
	PatientAttrID           = "_id"
	PatientAttrEmpNo        = "empNo"
	PatientAttrName         = "PatientName"
	PatientAttrEmiratesID   = "emiratesId"
	PatientAttrInsuranceID  = "insuranceId"
	PatientAttrTrLocation   = "trLocation"
	PatientAttrMobileNumber = "mobileNumber"
)

// IsPatientAttr returns true if name is a known patient attribute.
func IsPatientAttr(name string) bool {
	switch name {
	case PatientAttrID, PatientAttrEmpNo, PatientAttrName, PatientAttrEmiratesID,
		PatientAttrInsuranceID, PatientAttrTrLocation, PatientAttrMobileNumber:
		return true
	default:
		return false
	}
}

// Patient is the employee master record returned by the lookup endpoint.
type Patient struct {
	ID           string `json:"_id,omitempty"`
	EmpNo        string `json:"empNo,omitempty"`
	PatientName  string `json:"PatientName,omitempty"`
	EmiratesID   string `json:"emiratesId,omitempty"`
	InsuranceID  string `json:"insuranceId,omitempty"`
	TrLocation   string `json:"trLocation,omitempty"`
	MobileNumber string `json:"mobileNumber,omitempty"`
}

// Attr returns the value of a patient attribute.
func (p Patient) Attr(name string) string {
	switch name {
	case PatientAttrID:
		return p.ID
	case PatientAttrEmpNo:
		return p.EmpNo
	case PatientAttrName:
		return p.PatientName
	case PatientAttrEmiratesID:
		return p.EmiratesID
	case PatientAttrInsuranceID:
		return p.InsuranceID
	case PatientAttrTrLocation:
		return p.TrLocation
	case PatientAttrMobileNumber:
		return p.MobileNumber
	default:
		return ""
	}
}

// SetAttr sets a patient attribute. Unknown names are ignored.
func (p *Patient) SetAttr(name, value string) {
	switch name {
	case PatientAttrID:
		p.ID = value
	case PatientAttrEmpNo:
		p.EmpNo = value
	case PatientAttrName:
		p.PatientName = value
	case PatientAttrEmiratesID:
		p.EmiratesID = value
	case PatientAttrInsuranceID:
		p.InsuranceID = value
	case PatientAttrTrLocation:
		p.TrLocation = value
	case PatientAttrMobileNumber:
		p.MobileNumber = value
	}
}

// Differs reports whether any tracked field differs after trimming.
// The ID is not tracked.
func (p Patient) Differs(other Patient) bool {
	pairs := [][2]string{
		{p.EmpNo, other.EmpNo},
		{p.PatientName, other.PatientName},
		{p.EmiratesID, other.EmiratesID},
		{p.InsuranceID, other.InsuranceID},
		{p.TrLocation, other.TrLocation},
		{p.MobileNumber, other.MobileNumber},
	}
	for _, pair := range pairs {
		if strings.TrimSpace(pair[0]) != strings.TrimSpace(pair[1]) {
			return true
		}
	}
	return false
}

// IsZero reports whether no tracked field holds a value.
func (p Patient) IsZero() bool {
	return !p.Differs(Patient{})
}
