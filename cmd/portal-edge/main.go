// Command portal-edge runs the edge service in front of the workspace
// frontend and offers tooling around the route policy and the API client.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
