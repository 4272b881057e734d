// Package constants centralizes shared timeouts, probe limits, and fixed
// wordlists so scan behavior stays consistent across commands.
package constants
