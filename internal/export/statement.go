package export

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/Dan9191/hallbridge/internal/models"
	"github.com/Dan9191/hallbridge/internal/utils"
)

// Statement renders the payments of a billing period as an XML document grouped by student
func Statement(period utils.Period, payments []models.Payment, generatedAt time.Time) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("statement")
	root.CreateAttr("month", strconv.Itoa(period.Month))
	root.CreateAttr("year", strconv.Itoa(period.Year))
	root.CreateAttr("generated", generatedAt.UTC().Format(time.RFC3339))

	byStudent := make(map[string][]models.Payment)
	for _, p := range payments {
		byStudent[p.StudentID] = append(byStudent[p.StudentID], p)
	}
	studentIDs := make([]string, 0, len(byStudent))
	for id := range byStudent {
		studentIDs = append(studentIDs, id)
	}
	sort.Strings(studentIDs)

	var amount, lateFee, final float64
	for _, id := range studentIDs {
		student := root.CreateElement("student")
		student.CreateAttr("id", id)
		var studentTotal float64
		for _, p := range byStudent[id] {
			el := student.CreateElement("payment")
			el.CreateAttr("id", p.ID)
			el.CreateAttr("type", p.Type)
			el.CreateAttr("status", p.Status)
			el.CreateAttr("amount", money(p.Amount))
			el.CreateAttr("lateFee", money(p.LateFee))
			el.CreateAttr("finalAmount", money(p.FinalAmount))
			el.CreateAttr("dueDate", p.DueDate.In(utils.HallZone).Format(utils.DateLayout))
			amount += p.Amount
			lateFee += p.LateFee
			final += p.FinalAmount
			studentTotal += p.FinalAmount
		}
		student.CreateAttr("total", money(studentTotal))
	}

	totals := root.CreateElement("totals")
	totals.CreateAttr("count", strconv.Itoa(len(payments)))
	totals.CreateAttr("amount", money(amount))
	totals.CreateAttr("lateFee", money(lateFee))
	totals.CreateAttr("finalAmount", money(final))

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to write statement: %w", err)
	}
	return out, nil
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
