package report

import (
	"strings"

	"github.com/nconklindev/mealroute/internal/types"
)

// fieldPlan records, once per upload, which derived display fields the
// source can support. Each derived field is a function of a declared set of
// source columns.
type fieldPlan struct {
	clientID    bool
	name        bool
	address     bool
	phone       bool
	serviceType bool
	dietType    bool

	address2    bool
	building    bool
	homePhone   bool
	mobilePhone bool
}

func planFields(present map[string]bool) fieldPlan {
	return fieldPlan{
		clientID:    present[srcClientID],
		name:        present[srcFirstName] && present[srcLastName],
		address:     present[srcAddress1],
		phone:       present[srcMobilePhone] || present[srcHomePhone],
		serviceType: present[srcServiceType],
		dietType:    present[srcDietType],
		address2:    present[srcAddress2],
		building:    present[srcBuilding],
		homePhone:   present[srcHomePhone],
		mobilePhone: present[srcMobilePhone],
	}
}

// columns lists the display columns this plan produces. Route, Quantity and
// Delivered are always present.
func (p fieldPlan) columns() []string {
	has := map[string]bool{
		types.ColRoute:       true,
		types.ColClientID:    p.clientID,
		types.ColClientName:  p.name,
		types.ColAddress:     p.address,
		types.ColPhone:       p.phone,
		types.ColQuantity:    true,
		types.ColServiceType: p.serviceType,
		types.ColDietType:    p.dietType,
		types.ColDelivered:   true,
	}

	var cols []string
	for _, c := range types.DisplayColumns {
		if has[c] {
			cols = append(cols, c)
		}
	}
	return cols
}

func (p fieldPlan) build(row sourceRow, opts Options) types.DeliveryRecord {
	rec := types.DeliveryRecord{
		ID:        newRecordID(),
		Route:     strings.TrimSpace(row.get(srcRoute)),
		Meals:     ParseMeals(row.get(srcQuantity)),
		Delivered: opts.DefaultDelivered,
	}

	if p.clientID {
		rec.ClientID = strings.TrimSpace(row.get(srcClientID))
	}
	if p.name {
		rec.Name = DisplayName(row.get(srcFirstName), row.get(srcLastName))
	}
	if p.address {
		parts := []string{row.get(srcAddress1)}
		if p.address2 {
			parts = append(parts, row.get(srcAddress2))
		}
		if p.building {
			parts = append(parts, row.get(srcBuilding))
		}
		rec.Address = JoinAddress(parts...)
	}
	if p.phone {
		rec.Phone = PreferredPhone(row.get(srcMobilePhone), row.get(srcHomePhone))
	}
	if p.serviceType {
		rec.ServiceType = strings.TrimSpace(row.get(srcServiceType))
	}
	if p.dietType {
		rec.DietType = strings.TrimSpace(row.get(srcDietType))
	}

	return rec
}

// DisplayName joins first and last name.
func DisplayName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// JoinAddress joins address parts in order with single spaces, skipping
// blank parts.
func JoinAddress(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.Join(strings.Fields(p), " "); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// PreferredPhone returns the mobile number when it is not blank, otherwise
// the home number.
func PreferredPhone(mobile, home string) string {
	if m := strings.TrimSpace(mobile); m != "" {
		return m
	}
	return strings.TrimSpace(home)
}
