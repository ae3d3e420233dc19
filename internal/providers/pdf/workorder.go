package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type WorkOrderData struct {
	OrderNo            string
	TenantName         string
	CheckType          string
	ConfirmationStatus string

	ApplyDate    string
	DeadlineDate string

	SalesContact    string
	BusinessManager string
	SpecialNotes    string

	Tasks []WorkOrderTask
}

type WorkOrderTask struct {
	TaskType        string
	ExecutionStatus string
	Assignee        string
	SiteA           string
	SiteZ           string
	Bandwidth       string
	CircuitID       string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateWorkOrder(ctx context.Context, data WorkOrderData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Work Order "+data.OrderNo, props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(24,
		col.New(6).Add(
			text.New("Customer: "+data.TenantName, props.Text{Top: 0}),
			text.New("Category: "+data.CheckType, props.Text{Top: 5}),
			text.New("Status: "+data.ConfirmationStatus, props.Text{Top: 10}),
		),
		col.New(6).Add(
			text.New("Apply date: "+data.ApplyDate, props.Text{Top: 0}),
			text.New("Deadline: "+data.DeadlineDate, props.Text{Top: 5}),
		),
	)

	m.AddRow(16,
		col.New(6).Add(
			text.New("Sales contact", props.Text{Style: fontstyle.Bold}),
			text.New(data.SalesContact, props.Text{Top: 5}),
		),
		col.New(6).Add(
			text.New("Business manager", props.Text{Style: fontstyle.Bold}),
			text.New(data.BusinessManager, props.Text{Top: 5}),
		),
	)

	if data.SpecialNotes != "" {
		m.AddRow(20,
			text.NewCol(12, "Notes: "+data.SpecialNotes, props.Text{Size: 9}),
		)
	}

	m.AddRow(10,
		text.NewCol(3, "Task", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Status", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Site A", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Site Z", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(1, "BW", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Circuit", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, task := range data.Tasks {
		m.AddRow(10,
			text.NewCol(3, task.TaskType, props.Text{Size: 9}),
			text.NewCol(2, task.ExecutionStatus, props.Text{Size: 9}),
			text.NewCol(2, task.SiteA, props.Text{Size: 9}),
			text.NewCol(2, task.SiteZ, props.Text{Size: 9}),
			text.NewCol(1, task.Bandwidth, props.Text{Size: 9}),
			text.NewCol(2, task.CircuitID, props.Text{Size: 9, Align: align.Right}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
