package route

// Suffixes appended to pretty URLs.
const (
	ScriptSuffix = ".js"
	JSONSuffix   = ".json"
)

// Redirect builds a see-other decision pointing at requestURL with suffix
// appended. The target is not checked for existence.
func Redirect(kind Kind, requestURL, suffix string) Decision {
	return Decision{
		Kind:     kind,
		Location: requestURL + suffix,
	}
}
