package senddtmf

// Version is the release of send-dtmf. Release builds override it with
// -ldflags "-X github.com/aretw0/senddtmf.Version=...".
var Version = "0.1.0"
