package session

// Bank is one entry in the supported-bank directory. The code is what the
// account-resolution channel expects; the name is display text.
type Bank struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Banks is the directory of banks a user can select for account resolution.
var Banks = []Bank{
	{Code: "044", Name: "Access Bank"},
	{Code: "023", Name: "Citibank Nigeria"},
	{Code: "050", Name: "Ecobank Nigeria"},
	{Code: "070", Name: "Fidelity Bank"},
	{Code: "011", Name: "First Bank of Nigeria"},
	{Code: "214", Name: "First City Monument Bank"},
	{Code: "058", Name: "Guaranty Trust Bank"},
	{Code: "030", Name: "Heritage Bank"},
	{Code: "301", Name: "Jaiz Bank"},
	{Code: "082", Name: "Keystone Bank"},
	{Code: "526", Name: "Parallex Bank"},
	{Code: "076", Name: "Polaris Bank"},
	{Code: "101", Name: "Providus Bank"},
	{Code: "221", Name: "Stanbic IBTC Bank"},
	{Code: "068", Name: "Standard Chartered"},
	{Code: "232", Name: "Sterling Bank"},
	{Code: "100", Name: "SunTrust Bank"},
	{Code: "032", Name: "Union Bank of Nigeria"},
	{Code: "033", Name: "United Bank for Africa"},
	{Code: "215", Name: "Unity Bank"},
	{Code: "035", Name: "Wema Bank"},
	{Code: "057", Name: "Zenith Bank"},
}

// Titles, Genders, MaritalStatuses and Countries are the fixed dropdown
// option sets for the profile form.
var (
	Titles          = []string{"Mr", "Mrs", "Miss", "Dr", "Prof", "Chief"}
	Genders         = []string{"Male", "Female"}
	MaritalStatuses = []string{"Single", "Married", "Divorced", "Widowed"}
	Countries       = []string{"Nigeria"}
)

// BankByCode looks a bank up in the directory.
func BankByCode(code string) (Bank, bool) {
	for _, b := range Banks {
		if b.Code == code {
			return b, true
		}
	}
	return Bank{}, false
}

func optionsFor(field SelectionField) []string {
	switch field {
	case SelectionTitle:
		return Titles
	case SelectionGender:
		return Genders
	case SelectionMaritalStatus:
		return MaritalStatuses
	case SelectionCountry:
		return Countries
	default:
		return nil
	}
}

func validOption(field SelectionField, value string) bool {
	for _, v := range optionsFor(field) {
		if v == value {
			return true
		}
	}
	return false
}
