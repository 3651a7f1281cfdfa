package web

import (
	"fmt"

	vm "github.com/ericfisherdev/lovejar/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/lovejar/internal/application"
	"github.com/ericfisherdev/lovejar/internal/domain/model"
)

const jarTimeLayout = "Jan 2, 2006"

// toCoupleViewModel converts the dashboard and jar contents into the page view model.
func toCoupleViewModel(d application.Dashboard, items []model.JarItem, csrf string, ideasEnabled bool) vm.CoupleViewModel {
	code := d.Account.UniqueCode
	displayName := d.Account.DisplayName
	if displayName == "" {
		displayName = d.Account.Handle
	}

	page := vm.CoupleViewModel{
		Code:         code,
		Handle:       d.Account.Handle,
		DisplayName:  displayName,
		PictureURL:   d.Account.PictureURL,
		QRPath:       fmt.Sprintf("/api/v1/account/%s/qr", code),
		CounterPath:  fmt.Sprintf("/couple/%s/counter", code),
		JarPath:      fmt.Sprintf("/couple/%s/jar", code),
		CSRFToken:    csrf,
		Counter:      toCounterViewModel(d),
		JarItems:     make([]vm.JarItemViewModel, 0, len(items)),
		IdeasEnabled: ideasEnabled,
	}

	if d.Partner != nil {
		page.Partner = &vm.PartnerViewModel{
			Handle:      d.Partner.Handle,
			DisplayName: d.Partner.DisplayName,
			PictureURL:  d.Partner.PictureURL,
		}
	}

	if d.Projection != nil {
		next := d.Projection.NextAnniversary
		page.NextAnniversary = &vm.NextAnniversaryViewModel{
			Date:      next.Date.Format(model.DateLayout),
			DaysUntil: next.DaysUntil,
			Years:     next.Years,
		}
	}

	for _, item := range items {
		page.JarItems = append(page.JarItems, vm.JarItemViewModel{
			ID:        item.ID,
			HTML:      RenderMarkdown(item.Text),
			Mine:      item.OwnerCode == code,
			CreatedAt: item.CreatedAt.Format(jarTimeLayout),
		})
	}

	return page
}

// toCounterViewModel extracts the live counter widget from a dashboard.
func toCounterViewModel(d application.Dashboard) vm.CounterViewModel {
	if d.Projection == nil {
		return vm.CounterViewModel{}
	}

	tt := d.Projection.TimeTogether
	return vm.CounterViewModel{
		Set:     true,
		Started: tt.Started,
		Since:   model.FormatDate(d.Account.AnniversaryDate),
		Days:    tt.Days,
		Hours:   tt.Hours,
		Minutes: tt.Minutes,
		Seconds: tt.Seconds,
	}
}
