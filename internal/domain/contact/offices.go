package contact

import "strings"

// Office is one entry of the office directory.
type Office struct {
	Title     string `json:"title"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	PhoneHref string `json:"phoneHref"`
	Fax       string `json:"fax,omitempty"`
}

// Hours is one row of the operating hours table.
type Hours struct {
	Days  string `json:"days"`
	Hours string `json:"hours"`
}

// SalesContact is the named sales representative.
type SalesContact struct {
	Title     string `json:"title"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	MailHref  string `json:"mailHref"`
	Phone     string `json:"phone"`
	PhoneHref string `json:"phoneHref"`
}

// Directory is everything the contact page lists besides the form.
type Directory struct {
	Offices []Office     `json:"offices"`
	Hours   []Hours      `json:"hours"`
	Sales   SalesContact `json:"sales"`
}

// DefaultDirectory returns the company's offices and opening hours.
func DefaultDirectory() Directory {
	offices := []Office{
		{
			Title:   "Head Office (Jakarta)",
			Address: "Graha Elnusa, 7th Floor, Jl. TB. Simatupang Kav. 1B, South Jakarta",
			Phone:   "(62-21) 7883 0856",
			Fax:     "(62-21) 7883 0857",
		},
		{
			Title:   "Operational Office (BSD)",
			Address: "Jl. Tekno I Blok B5-B7, BSD, South Tangerang",
			Phone:   "(62-21) 7587 1955",
			Fax:     "(62-21) 7587 1933",
		},
		{
			Title:   "Project Office (Duri - SCADA Project)",
			Address: "Jl. Asrama Tribrata No.22, Duri, Riau, Indonesia",
			Phone:   "(62-76) 1175 0477 6",
		},
	}
	for i := range offices {
		offices[i].PhoneHref = TelHref(offices[i].Phone)
	}

	salesEmail := "marwan.siregar@elnusa.co.id"
	salesPhone := "(+62) 8117 5047 76"

	return Directory{
		Offices: offices,
		Hours: []Hours{
			{Days: "Monday-Friday", Hours: "08:00 - 17:00 WIB"},
			{Days: "Saturday", Hours: "08:00 - 12:00 WIB"},
			{Days: "Sunday / Holidays", Hours: "Closed"},
		},
		Sales: SalesContact{
			Title:     "United Head Sales (Duri)",
			Name:      "Marwan Siregar",
			Email:     salesEmail,
			MailHref:  MailHref(salesEmail),
			Phone:     salesPhone,
			PhoneHref: TelHref(salesPhone),
		},
	}
}

// TelHref returns a tel: link keeping only '+' and digits.
func TelHref(number string) string {
	var b strings.Builder
	b.WriteString("tel:")
	for _, r := range number {
		if r == '+' || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MailHref returns a mailto: link.
func MailHref(email string) string {
	return "mailto:" + email
}
