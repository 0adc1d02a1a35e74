package ui

import "github.com/AlecAivazis/survey/v2"

// IconOption styles survey questions to match the huh prompts.
func IconOption() survey.AskOpt {
	return survey.WithIcons(func(icons *survey.IconSet) {
		icons.Question.Text = "-"
		icons.Error.Text = "x"
		icons.Error.Format = "red+b"
	})
}
