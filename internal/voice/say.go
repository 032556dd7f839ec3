package voice

import (
	"fmt"
	"log"
	"os/exec"
)

// CommandSpeaker speaks through an external text-to-speech command such as
// macOS "say" or espeak. The text is passed as the final argument.
type CommandSpeaker struct {
	Command string
	Args    []string
}

// NewSaySpeaker returns a speaker using the macOS say command at 150 words per minute.
func NewSaySpeaker() *CommandSpeaker {
	return &CommandSpeaker{Command: "say", Args: []string{"-r", "150"}}
}

// Say starts the command and returns without waiting for it to finish.
func (s *CommandSpeaker) Say(text string) error {
	args := append(append([]string{}, s.Args...), text)
	cmd := exec.Command(s.Command, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", s.Command, err)
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			log.Printf("Speech output failed: %v", err)
		}
	}()
	return nil
}
