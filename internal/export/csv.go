package export

import (
	"encoding/csv"
	"github.com/umalmyha/leads/internal/model"
	"io"
)

// FileName is name of exported file offered to the caller
const FileName = "clients.csv"

var Header = []string{
	"Title", "Name", "Surname", "Phone Number", "ID Number", "Email", "Notes", "Opt-in Date", "Preferred Time", "Offer ID",
}

func WriteCSV(w io.Writer, clients []*model.Client) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return err
	}

	for _, c := range clients {
		if err := cw.Write(Record(c)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Record maps client to csv columns in Header order
func Record(c *model.Client) []string {
	return []string{
		c.Title,
		c.Name,
		c.Surname,
		c.PhoneNumber,
		c.IDNumber,
		c.Email,
		valueOrEmpty(c.Notes),
		valueOrEmpty(c.OptInDate),
		valueOrEmpty(c.PreferredTime),
		valueOrEmpty(c.OfferID),
	}
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
