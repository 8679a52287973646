package checkout

import (
	"regexp"
	"strings"
)

// districts lists the 64 districts of Bangladesh accepted as a shipping
// destination.
var districts = []string{
	"Bagerhat", "Bandarban", "Barguna", "Barishal", "Bhola", "Bogura",
	"Brahmanbaria", "Chandpur", "Chapainawabganj", "Chattogram", "Chuadanga",
	"Cox's Bazar", "Cumilla", "Dhaka", "Dinajpur", "Faridpur", "Feni",
	"Gaibandha", "Gazipur", "Gopalganj", "Habiganj", "Jamalpur", "Jashore",
	"Jhalokati", "Jhenaidah", "Joypurhat", "Khagrachhari", "Khulna",
	"Kishoreganj", "Kurigram", "Kushtia", "Lakshmipur", "Lalmonirhat",
	"Madaripur", "Magura", "Manikganj", "Meherpur", "Moulvibazar",
	"Munshiganj", "Mymensingh", "Naogaon", "Narail", "Narayanganj",
	"Narsingdi", "Natore", "Netrokona", "Nilphamari", "Noakhali", "Pabna",
	"Panchagarh", "Patuakhali", "Pirojpur", "Rajbari", "Rajshahi",
	"Rangamati", "Rangpur", "Satkhira", "Shariatpur", "Sherpur", "Sirajganj",
	"Sunamganj", "Sylhet", "Tangail", "Thakurgaon",
}

var districtIndex = func() map[string]string {
	index := make(map[string]string, len(districts))
	for _, d := range districts {
		index[strings.ToLower(d)] = d
	}
	return index
}()

// Districts returns the accepted district names in alphabetical order.
func Districts() []string {
	out := make([]string, len(districts))
	copy(out, districts)
	return out
}

// NormalizeDistrict maps a case-insensitive district name to its canonical
// spelling, or returns the empty string when it is not a known district.
func NormalizeDistrict(name string) string {
	return districtIndex[strings.ToLower(strings.TrimSpace(name))]
}

// IsValidDistrict reports whether name is one of the accepted districts.
func IsValidDistrict(name string) bool {
	return NormalizeDistrict(name) != ""
}

// phonePattern matches Bangladeshi mobile numbers: eleven digits starting
// with 013 through 019.
var phonePattern = regexp.MustCompile(`^01[3-9]\d{8}$`)

// IsValidPhone reports whether value is a valid local mobile number.
func IsValidPhone(value string) bool {
	return phonePattern.MatchString(strings.TrimSpace(value))
}
