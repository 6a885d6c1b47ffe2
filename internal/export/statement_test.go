package export

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/hallbridge/internal/models"
	"github.com/Dan9191/hallbridge/internal/utils"
)

func TestStatement(t *testing.T) {
	due := time.Date(2025, 12, 11, 0, 0, 0, 0, utils.HallZone)
	payments := []models.Payment{
		{ID: "p2", StudentID: "s-b", Type: models.PaymentHallFee, Status: models.PaymentPending, Amount: 5000, FinalAmount: 5000, DueDate: due},
		{ID: "p1", StudentID: "s-a", Type: models.PaymentHallFee, Status: models.PaymentPending, Amount: 5000, LateFee: 250, FinalAmount: 5250, DueDate: due},
		{ID: "p3", StudentID: "s-a", Type: models.PaymentOther, Status: models.PaymentCompleted, Amount: 150, FinalAmount: 150, DueDate: due},
	}

	out, err := Statement(utils.Period{Month: 11, Year: 2025}, payments, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))

	root := doc.SelectElement("statement")
	require.NotNil(t, root)
	assert.Equal(t, "11", root.SelectAttrValue("month", ""))
	assert.Equal(t, "2025", root.SelectAttrValue("year", ""))

	students := root.SelectElements("student")
	require.Len(t, students, 2)
	assert.Equal(t, "s-a", students[0].SelectAttrValue("id", ""))
	assert.Equal(t, "5400.00", students[0].SelectAttrValue("total", ""))
	assert.Len(t, students[0].SelectElements("payment"), 2)

	first := students[0].SelectElements("payment")[0]
	assert.Equal(t, "250.00", first.SelectAttrValue("lateFee", ""))
	assert.Equal(t, "2025-12-11", first.SelectAttrValue("dueDate", ""))

	totals := root.SelectElement("totals")
	require.NotNil(t, totals)
	assert.Equal(t, "3", totals.SelectAttrValue("count", ""))
	assert.Equal(t, "10150.00", totals.SelectAttrValue("amount", ""))
	assert.Equal(t, "10400.00", totals.SelectAttrValue("finalAmount", ""))
}

func TestStatementEmpty(t *testing.T) {
	out, err := Statement(utils.Period{Month: 1, Year: 2026}, nil, time.Now())
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	assert.Empty(t, doc.FindElements("//student"))
	assert.Equal(t, "0", doc.FindElement("//totals").SelectAttrValue("count", ""))
}
