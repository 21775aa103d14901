package main

import "github.com/cognicore/topicprep/internal/cli"

// Build variables set by ldflags
var (
	version = "dev"
	commit  string
	date    string
)

func main() {
	cli.Execute(version, commit, date)
}
