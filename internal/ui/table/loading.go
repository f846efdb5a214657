package table

// LoadingText is shown while a fetch is outstanding.
const LoadingText = "Loading..."

// LoadingIndicator returns LoadingText when loading, "" otherwise.
func LoadingIndicator(loading bool) string {
	if loading {
		return LoadingText
	}
	return ""
}
