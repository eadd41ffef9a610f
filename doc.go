// Package admitdoc generates patient admission notices as PDF documents.
//
// # Quick Start
//
// Create a generator, then generate a notice from a template:
//
//	gen, err := admitdoc.NewGenerator()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := gen.Generate(ctx, admitdoc.Input{
//	    PatientName: "Maria Silva",
//	    BirthDate:   time.Date(1980, 5, 17, 0, 0, 0, 0, time.UTC),
//	    Admission:   admitdoc.Voluntary,
//	    Template:    "{{CABECALHO_IMAGEM}}\nPaciente: {{NOME_PACIENTE}}\n**Normas**",
//	    BoldPhrases: []string{"Paciente:"},
//	    HeaderImage: admitdoc.StoredFilename("logo.png"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(res.Filename, res.PDF, 0644)
//
// # Pipeline
//
//  1. Validation (patient name, admission type, minimum age)
//  2. Placeholder substitution ({{NOME_PACIENTE}}, {{DATA_NASCIMENTO}}, {{DATA_ATUAL}})
//  3. Bold marking of the configured literal phrases as **phrase**
//  4. Header image load, bounded by a timeout; failures only drop the image
//  5. Segmentation into normal and bold runs
//  6. Word wrapping and pagination on the page geometry
//  7. PDF drawing via gofpdf
//
// The header image is drawn edge to edge at the top of the first page, only
// when the template contains {{CABECALHO_IMAGEM}}.
//
// # Configuration
//
// Use functional options to customize the generator:
//
//	gen, err := admitdoc.NewGenerator(
//	    admitdoc.WithImageBaseDir("config/images"),
//	    admitdoc.WithImageTimeout(5*time.Second),
//	    admitdoc.WithMinimumAge(18),
//	    admitdoc.WithDateFormat("DD/MM/YYYY"),
//	)
//
// # Errors
//
// Input problems wrap ErrValidation and are reported before any rendering.
// Backend failures wrap ErrRender. Header image problems are logged through
// the configured slog.Logger and never fail a generation.
package admitdoc
