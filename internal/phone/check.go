package phone

import (
	"github.com/nyaruka/phonenumbers"
)

// Verdict is the advisory result of checking a canonical number against
// libphonenumber metadata.
type Verdict struct {
	Number Number `json:"number"`
	Valid  bool   `json:"valid"`
	Region string `json:"region,omitempty"`
	Mobile bool   `json:"mobile"`
	Reason string `json:"reason,omitempty"`
}

// Check reports whether n parses as an international number and is valid
// for its region. It never changes n.
func Check(n Number) Verdict {
	v := Verdict{Number: n}

	parsed, err := phonenumbers.Parse(string(n), "")
	if err != nil {
		v.Reason = err.Error()
		return v
	}

	v.Region = phonenumbers.GetRegionCodeForNumber(parsed)
	v.Valid = phonenumbers.IsValidNumber(parsed)
	if !v.Valid {
		v.Reason = "not a valid number for its region"
		return v
	}

	switch phonenumbers.GetNumberType(parsed) {
	case phonenumbers.MOBILE, phonenumbers.FIXED_LINE_OR_MOBILE:
		v.Mobile = true
	}
	return v
}
