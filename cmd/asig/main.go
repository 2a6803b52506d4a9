// Command asig serves and manages git-backed engineering lifecycle
// projects.
package main

import "github.com/sealmit/asig/internal/cli"

func main() {
	cli.Execute()
}
