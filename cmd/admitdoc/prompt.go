package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	admitdoc "github.com/alnah/go-admitdoc"
	"github.com/alnah/go-admitdoc/internal/dateutil"
	flag "github.com/spf13/pflag"
)

// prompter asks the operator for one value at a time. The survey
// implementation needs a terminal; tests substitute a scripted one.
type prompter interface {
	Input(ctx context.Context, message, help string, validate func(string) error) (string, error)
	Select(ctx context.Context, message string, options []string) (int, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Input(ctx context.Context, message, help string, validate func(string) error) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{Message: message, Help: help}
	var opts []survey.AskOpt
	if validate != nil {
		opts = append(opts, survey.WithValidator(func(ans any) error {
			s, _ := ans.(string)
			return validate(s)
		}))
	}
	if err := survey.AskOne(prompt, &out, opts...); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyPrompter) Select(ctx context.Context, message string, options []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var out int
	prompt := &survey.Select{Message: message, Options: options}
	if err := survey.AskOne(prompt, &out); err != nil {
		return 0, translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

// admissionOptions are the form choices, in AdmissionTypes order.
func admissionOptions() []string {
	opts := make([]string, len(admitdoc.AdmissionTypes))
	for i, a := range admitdoc.AdmissionTypes {
		opts[i] = a.Title()
	}
	return opts
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("o nome do paciente é obrigatório")
	}
	return nil
}

func validateBirthDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	_, err := dateutil.ParseDate(s)
	return err
}

// askPatient runs the interactive form.
func askPatient(ctx context.Context, p prompter) (patient, error) {
	name, err := p.Input(ctx, "Nome do paciente:", "Nome completo, como deve constar no documento.", validateName)
	if err != nil {
		return patient{}, err
	}
	birth, err := p.Input(ctx, "Data de nascimento (opcional):", "AAAA-MM-DD ou DD/MM/AAAA; deixe em branco se não informada.", validateBirthDate)
	if err != nil {
		return patient{}, err
	}
	idx, err := p.Select(ctx, "Tipo de internação:", admissionOptions())
	if err != nil {
		return patient{}, err
	}
	if idx < 0 || idx >= len(admitdoc.AdmissionTypes) {
		return patient{}, fmt.Errorf("%w: no admission type selected", ErrUsage)
	}
	return parsePatient(name, birth, string(admitdoc.AdmissionTypes[idx]))
}

// runPrompt asks for the patient data interactively and renders one notice.
func runPrompt(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parsePromptFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printPromptUsage(env.Stdout)
			return nil
		}
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: prompt: unexpected argument %q", ErrUsage, positional[0])
	}

	p, err := askPatient(ctx, env.Prompter)
	if err != nil {
		return err
	}

	g, err := setupGeneration(ctx, f.common, f.image, env)
	if err != nil {
		return err
	}
	defer func() { _ = g.sources.Close() }()

	start := env.Now()
	path, res, err := g.generateOne(ctx, p, f.output)
	if err != nil {
		return err
	}
	printCreated(env, f.common, path, res, env.Now().Sub(start), g.settings.cfg.Images.BaseDir)
	return nil
}
