// Package pdf certificado de procedencia de un producto.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre + lote        │  N° en ledger + fecha        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  REGISTRO LOCAL: precio / cantidad / tenedor / etapa         │
//	│  LEDGER: owner / supplier / consumer / metaHash              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  HISTORIAL: Fecha | Desde | Hacia | Rol                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR red:contrato:id + leyenda                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/Trazabilidad-api/internal/application/certificate"
	"github.com/jhoicas/Trazabilidad-api/pkg/ether"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 22, Green: 101, Blue: 52}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ certificate.Generator = (*MarotoCertificateGenerator)(nil)

// MarotoCertificateGenerator implementa certificate.Generator usando Maroto v2.
type MarotoCertificateGenerator struct{}

// NewMarotoCertificateGenerator construye el generador.
func NewMarotoCertificateGenerator() *MarotoCertificateGenerator {
	return &MarotoCertificateGenerator{}
}

// GenerateCertificate genera el PDF y devuelve sus bytes.
func (g *MarotoCertificateGenerator) GenerateCertificate(_ context.Context, data certificate.Data) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Certificado de procedencia", true).
		WithAuthor(data.Record.OwnerUsername, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(recordRow(data))
	m.AddRows(ledgerRows(data)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(historyHeaderRow())
	m.AddRows(historyRows(data)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(data)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: nombre + lote (izq) y N° en ledger + fecha (der).
func headerRow(data certificate.Data) core.Row {
	rec := data.Record
	return row.New(18).Add(
		col.New(7).Add(
			text.New(rec.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Lote: "+nonEmpty(rec.BatchRef, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("CERTIFICADO DE PROCEDENCIA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Producto "+rec.DisplayID(), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Emitido: "+data.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// recordRow: datos del registro local.
func recordRow(data certificate.Data) core.Row {
	rec := data.Record
	return row.New(18).Add(
		col.New(12).Add(
			text.New("REGISTRO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(rec.Description, "Sin descripción"), props.Text{Size: 9, Top: 6}),
			text.New(fmt.Sprintf("Precio: %s ETH   |   Cantidad: %d   |   Tenedor: %s (%s)   |   Etapa: %s",
				rec.UnitPrice, rec.Quantity, rec.OwnerUsername, rec.OwnerRole, rec.Stage,
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// ledgerRows: campos leídos del contrato.
func ledgerRows(data certificate.Data) []core.Row {
	snap := data.Snapshot
	field := func(label, value string) core.Row {
		return row.New(5).Add(
			col.New(3).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 7.5, Top: 1})),
			col.New(9).Add(text.New(value, props.Text{Size: 7.5, Top: 1, Color: colorGray})),
		)
	}
	return []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("ESTADO EN EL LEDGER", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
		field("Owner", snap.Owner),
		field("Supplier", snap.Supplier),
		field("Consumer", snap.Consumer),
		field("Precio", ether.FormatEther(snap.PriceWei)+" ETH"),
		field("Cantidad", fmt.Sprintf("%d", snap.Quantity)),
		field("Meta hash", snap.MetaHash),
		field("Última tx", nonEmpty(data.Record.LastTxRef, "—")),
	}
}

// historyHeaderRow: cabecera de la tabla de traspasos.
func historyHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		h("Fecha", 2, align.Left),
		h("Desde", 4, align.Left),
		h("Hacia", 4, align.Left),
		h("Rol", 2, align.Center),
	)
}

// historyRows: una fila por traspaso, en el orden del ledger.
func historyRows(data certificate.Data) []core.Row {
	if len(data.History) == 0 {
		return []core.Row{row.New(7).Add(col.New(12).Add(
			text.New("Sin traspasos registrados.", props.Text{Size: 8, Top: 1, Color: colorGray}),
		))}
	}
	result := make([]core.Row, 0, len(data.History))
	for _, ev := range data.History {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(ev.Timestamp.Format("02/01/2006"),
				props.Text{Size: 7, Top: 1, Left: 1})),
			col.New(4).Add(text.New(ev.From,
				props.Text{Size: 6.5, Top: 1, Left: 1})),
			col.New(4).Add(text.New(ev.To,
				props.Text{Size: 6.5, Top: 1, Left: 1})),
			col.New(2).Add(text.New(ev.Role,
				props.Text{Size: 7, Align: align.Center, Top: 1})),
		))
	}
	return result
}

// footerRows: QR con red:contrato:id + leyenda.
func footerRows(data certificate.Data) []core.Row {
	payload := data.QRPayload()
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("VERIFICACIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}
	for _, chunk := range splitEvery(payload, 80) {
		rows = append(rows, row.New(4).Add(col.New(12).Add(
			text.New(chunk, props.Text{Size: 6.5, Color: colorGray, Top: 0.5, Left: 2}),
		)))
	}
	rows = append(rows, row.New(3))
	rows = append(rows, row.New(45).Add(
		col.New(4).Add(code.NewQr(payload, props.Rect{
			Percent: 95,
			Center:  true,
		})),
		col.New(8).Add(
			text.New("Escanea el código QR para consultar\neste producto directamente en el contrato.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New("El ledger es la fuente de verdad;\neste documento es una copia de consulta.", props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 22,
				Left: 3, Color: colorPrimary,
			}),
		),
	))
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// splitEvery divide s en trozos de max n caracteres.
func splitEvery(s string, n int) []string {
	var parts []string
	for len(s) > n {
		parts = append(parts, s[:n])
		s = s[n:]
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}
