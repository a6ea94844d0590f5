// Package useragent provides browser user-agent strings for outgoing
// fetches. Pure functions over a pinned list, safe for concurrent use.
package useragent

import "math/rand"

// chromeAgents is a pinned set of recent desktop Chrome agents, newest
// first. Refreshed occasionally alongside browser releases.
var chromeAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
}

// Chrome returns the newest pinned desktop Chrome user agent, the default
// for every fetch without an explicit override.
func Chrome() string {
	return chromeAgents[0]
}

// Random returns a random agent from the pinned set.
func Random() string {
	return chromeAgents[rand.Intn(len(chromeAgents))]
}
