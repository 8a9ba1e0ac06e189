package shell

// Step is one entry of the deployment checklist.
type Step struct {
	Number string
	Title  string
	Desc   string
}

// InstructionsTitle heads the checklist.
const InstructionsTitle = "Deployment Checklist (Important)"

// Instructions is the fixed deployment checklist.
var Instructions = []Step{
	{"01", "Download", "Click Get Files to get your ZIP file."},
	{"02", "Unzip", "Open the ZIP file on your computer to find the 4 files."},
	{"03", "GitHub", "Create a NEW project on GitHub and upload those 4 files."},
	{"04", "Launch", "Go to Settings > Pages to get your live website link!"},
}

// InstructionsNote closes the checklist.
const InstructionsNote = "Note: files are not put on GitHub for you. You must upload them yourself! " +
	"The page lists the shell's source; run `redactor serve` for the working shell."
