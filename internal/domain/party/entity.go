package party

import (
	"strings"
	"time"

	"github.com/ozziework/contracts-backend-go/internal/domain/contract"
)

// Party is the profile data the workflow needs about an employer or traveller:
// display/snapshot fields for payslips and bank coordinates for the generated
// transfer instructions. Accounts themselves live with the identity service.
type Party struct {
	ID              string
	Role            contract.Role
	Name            string
	Email           string
	CompanyName     string
	AddressStreet   string
	AddressCity     string
	AddressState    string
	AddressPostcode string
	ABN             string
	TFN             string
	BankName        string
	BankBSB         string
	BankAccount     string
	SuperFundName   string
	SuperAccount    string
	IsSuspended     bool
	UpdatedAt       time.Time
}

// DisplayName prefers the company name for employers, then the personal name,
// then the email.
func (p Party) DisplayName() string {
	if p.Role == contract.RoleEmployer && strings.TrimSpace(p.CompanyName) != "" {
		return p.CompanyName
	}
	if strings.TrimSpace(p.Name) != "" {
		return p.Name
	}
	return p.Email
}

// Address joins the address parts that are present, comma separated.
func (p Party) Address() string {
	cityState := strings.TrimSpace(strings.Join(nonEmpty(p.AddressCity, p.AddressState), " "))
	parts := nonEmpty(strings.TrimSpace(p.AddressStreet), cityState, strings.TrimSpace(p.AddressPostcode))
	return strings.Join(parts, ", ")
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
