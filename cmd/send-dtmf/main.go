// Command send-dtmf writes a DTMF sequence into the SvxLink DTMF control file.
//
// Usage:
//
//	sudo -u svxlink send-dtmf "*123#"
package main

func main() {
	Execute()
}
