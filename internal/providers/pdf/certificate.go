package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

const dateLayout = "2 January 2006"

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateCertificate(ctx context.Context, data CertificateData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(14,
		text.NewCol(12, "Certificate of Membership", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)

	m.AddRow(22,
		col.New(6).Add(
			text.New(fmt.Sprintf("Membership number: %d", data.MembershipNumber), props.Text{Top: 0}),
			text.New("Membership holder: "+data.HolderName, props.Text{Top: 4}),
			text.New("Membership type: "+data.Type, props.Text{Top: 8}),
		),
		col.New(6).Add(
			text.New("Coverage: "+data.CoverageType, props.Text{Top: 0}),
			text.New("Duration: "+data.DurationType, props.Text{Top: 4}),
			text.New(fmt.Sprintf("Valid %s to %s",
				data.StartDate.Format(dateLayout),
				data.EndDate.Format(dateLayout)), props.Text{Top: 8}),
		),
	)

	m.AddRow(10,
		text.NewCol(8, "Covered member", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(4, "Date of birth", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, member := range data.Members {
		name := member.Name
		if member.IsPrimary {
			name += " (primary)"
		}
		m.AddRow(8,
			text.NewCol(8, name, props.Text{Size: 9}),
			text.NewCol(4, member.DateOfBirth.Format(dateLayout), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(16,
		text.NewCol(12,
			"Cover is subject to the membership terms in force on the start date shown above.",
			props.Text{Size: 8, Top: 6}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}
