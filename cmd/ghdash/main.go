// Command ghdash is the command-line front end of the dashboard.
package main

import _ "time/tzdata"

func main() {
	Execute()
}
