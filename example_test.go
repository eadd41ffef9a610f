package admitdoc_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alnah/go-admitdoc"
)

// Example generates a notice without a header image.
func Example() {
	gen, err := admitdoc.NewGenerator(
		admitdoc.WithClock(func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }),
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	res, err := gen.Generate(context.Background(), admitdoc.Input{
		PatientName: "Maria Silva",
		BirthDate:   time.Date(1980, 5, 17, 0, 0, 0, 0, time.UTC),
		Admission:   admitdoc.Voluntary,
		Template:    "Paciente: {{NOME_PACIENTE}}\nNascimento: {{DATA_NASCIMENTO}}\n\n**Normas da unidade**",
		BoldPhrases: []string{"Paciente:"},
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(res.Filename, res.Pages)
	// Output: voluntaria_maria_silva_2026-03-02.pdf 1
}

// Example_validation shows the fail-fast age check.
func Example_validation() {
	gen, err := admitdoc.NewGenerator(
		admitdoc.WithClock(func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }),
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	_, err = gen.Generate(context.Background(), admitdoc.Input{
		PatientName: "Pedro",
		BirthDate:   time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC),
		Admission:   admitdoc.Involuntary,
		Template:    "{{NOME_PACIENTE}}",
	})
	fmt.Println(errors.Is(err, admitdoc.ErrPatientUnderage), errors.Is(err, admitdoc.ErrValidation))
	// Output: true true
}
