package buildinfo

// Name is the product name shown in boot banners and window titles.
const Name = "reflex"

// Version is set at build time via -ldflags.
var Version = "dev"

// Commit is set at build time via -ldflags.
var Commit = "unknown"

// Date is set at build time via -ldflags.
var Date = "unknown"

// Short returns a compact build identifier for UI/logging.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	return "dev"
}

// String returns the full banner, e.g. "reflex v1.2.0 (abc123, 2024-05-01)".
func String() string {
	s := Name + " " + Short()
	if Commit != "" && Commit != "unknown" && Short() != Commit {
		s += " (" + Commit
		if Date != "" && Date != "unknown" {
			s += ", " + Date
		}
		s += ")"
	}
	return s
}
