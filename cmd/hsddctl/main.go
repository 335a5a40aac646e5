// Command hsddctl is a small demonstration front-end for the hsdd engine: it
// builds a tuple space, saturates and evaluates a homomorphism against it,
// and reports diagnostics, the way the teacher's analysis CLI drives its own
// engine from the command line.
package main

import "github.com/hsdd-project/hsdd/cmd/hsddctl/cmd"

func main() {
	cmd.Execute()
}
