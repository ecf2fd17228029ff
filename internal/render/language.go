package render

import "golang.org/x/text/language"

// DefaultLanguage is used for unknown or unsupported language codes
const DefaultLanguage = "en"

// supported lists the languages with a string table, default first
var supported = []language.Tag{language.English, language.Hebrew}

var matcher = language.NewMatcher(supported)

// ResolveLanguage maps a user's stored language code to a supported language.
// Regional variants match their base language.
func ResolveLanguage(code string) string {
	if code == "" {
		return DefaultLanguage
	}
	tag, err := language.Parse(code)
	if err != nil {
		return DefaultLanguage
	}
	_, idx, confidence := matcher.Match(tag)
	if confidence == language.No {
		return DefaultLanguage
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// Direction returns the text direction for a resolved language
func Direction(lang string) string {
	if lang == "he" {
		return "rtl"
	}
	return "ltr"
}
