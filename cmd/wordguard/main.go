// Wordguard is the content moderation service for the Quillpress
// publishing site.
//
// It keeps the list of prohibited terms, checks reader comments and other
// submitted text against it, and records rejected submissions for review.
//
// Usage:
//
//	# Start the HTTP API with defaults and WORDGUARD_* environment overrides
//	wordguard run
//
//	# Start with a configuration file
//	wordguard run --config /etc/wordguard/config.yaml
//
//	# Check text from the command line or stdin
//	wordguard check "some text"
//	echo "some text" | wordguard check
//
//	# Manage the term list
//	wordguard terms add "buy now"
//	wordguard terms import terms.yaml
//
//	# Review rejected submissions
//	wordguard violations list --since 24h
package main

func main() {
	Execute()
}
