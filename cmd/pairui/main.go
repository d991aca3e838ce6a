// Command pairui renders and checks the matter2mqtt pairing UI headlessly.
package main

import "github.com/matter2mqtt/pairui/cmd/pairui/cmd"

func main() {
	cmd.Execute()
}
