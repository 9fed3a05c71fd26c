package security

import "fmt"

// Choice enumerates the remediation options presented to the user when a
// command touches a forbidden path and the safety review does not clear it.
type Choice string

const (
	// ChoiceAllowOnce runs the command without recording any approval.
	ChoiceAllowOnce Choice = "ALLOW_ONCE"

	// ChoiceAllowAndWhitelist runs the command and approves the matched
	// file for the rest of the session.
	ChoiceAllowAndWhitelist Choice = "ALLOW_AND_WHITELIST"

	// ChoiceExecuteManually asks the user to run the command in a separate
	// terminal and paste the output back.
	ChoiceExecuteManually Choice = "EXECUTE_MANUALLY"

	// ChoiceSkip rejects the command outright.
	ChoiceSkip Choice = "SKIP"
)

func (c Choice) String() string { return string(c) }

// MenuChoices returns the remediation options in the order they are
// presented to the user.
func MenuChoices() []Choice {
	return []Choice{
		ChoiceAllowOnce,
		ChoiceAllowAndWhitelist,
		ChoiceExecuteManually,
		ChoiceSkip,
	}
}

// Display returns the menu text for the choice. The whitelist option names
// the file that would be approved.
func (c Choice) Display(file string) string {
	switch c {
	case ChoiceAllowOnce:
		return "Allow once"
	case ChoiceAllowAndWhitelist:
		return fmt.Sprintf("Allow and add the file to session's whitelist (%s)", file)
	case ChoiceExecuteManually:
		return "Execute manually in separate terminal"
	case ChoiceSkip:
		return "Skip command"
	default:
		return string(c)
	}
}
