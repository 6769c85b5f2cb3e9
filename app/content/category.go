package content

import "strings"

// categoryNeedles maps keyword substrings to help-center categories,
// checked in order, first hit wins.
var categoryNeedles = []struct {
	needle string
	cat    string
}{
	{"dui", "DUI & DMV"},
	{"dmv", "DUI & DMV"},
	{"personal injury", "Personal Injury"},
	{"injury", "Personal Injury"},
	{"car accident", "Personal Injury"},
	{"property damage", "Property Damage"},
	{"felony", "Felony"},
	{"misdemeanor", "Misdemeanor"},
	{"federal", "Federal"},
	{"state", "State"},
	{"trial", "Trial"},
	{"appeal", "Appeals"},
	{"domestic violence", "Domestic Violence"},
	{"drug", "Drug Crimes"},
	{"juvenile", "Juvenile"},
	{"expung", "Expungement"},
	{"bail", "Bail"},
	{"sentenc", "Sentencing"},
	{"witness", "Trial"},
	{"san diego", "San Diego"},
}

// GuessCategory guesses the help-center category of an article from its
// title and keywords.
func GuessCategory(a Article) string {
	text := strings.ToLower(a.Title + " " + strings.Join(a.Keywords, " "))
	for _, m := range categoryNeedles {
		if strings.Contains(text, m.needle) {
			return m.cat
		}
	}
	return "General"
}
