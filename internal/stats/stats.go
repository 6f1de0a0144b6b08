package stats

import (
	"math"
	"strconv"
	"strings"

	"immodash/internal/domain"
	"immodash/internal/normalize"
)

const other = "Autre"

// Price tiers, lowest first. A price belongs to the first tier whose bound it is below.
var priceTiers = []struct {
	Label string
	Below int64
}{
	{"< 500K", 500_000},
	{"500K - 2M", 2_000_000},
	{"2M - 5M", 5_000_000},
	{"5M - 10M", 10_000_000},
	{"> 10M", math.MaxInt64},
}

// TierLabels lists the price tier labels in ascending order.
func TierLabels() []string {
	out := make([]string, len(priceTiers))
	for i, t := range priceTiers {
		out[i] = t.Label
	}
	return out
}

// Tier returns the tier label of a known price, "" for an unknown one.
func Tier(price int64) string {
	if price <= 0 {
		return ""
	}
	for _, t := range priceTiers {
		if price < t.Below {
			return t.Label
		}
	}
	return priceTiers[len(priceTiers)-1].Label
}

// Compute derives dashboard statistics. Empty inputs yield zero counts and empty maps.
func Compute(props []domain.Property, visits []domain.Visit) domain.Stats {
	s := domain.Stats{
		ParType:          map[string]int{},
		ParZone:          map[string]int{},
		ParCommune:       map[string]int{},
		ParDisponibilite: map[string]int{},
		ParChambres:      map[string]int{},
		ParTranchePrix:   map[string]int{},
	}

	var sum, priced int64
	for _, p := range props {
		s.TotalBiens++
		if p.Disponible {
			s.BiensDisponibles++
		} else {
			s.BiensOccupes++
		}
		if p.Meuble {
			s.Meubles++
		} else {
			s.NonMeubles++
		}

		s.ParType[orOther(p.TypeBien)]++
		s.ParZone[orOther(normalize.FirstSegment(p.Zone))]++
		s.ParCommune[CommuneOf(p)]++
		s.ParDisponibilite[p.Status]++
		s.ParChambres[bedroomLabel(p.Chambres)]++

		if p.RawPrice > 0 {
			s.ParTranchePrix[Tier(p.RawPrice)]++
			sum += p.RawPrice
			priced++
			if s.PrixMin == 0 || p.RawPrice < s.PrixMin {
				s.PrixMin = p.RawPrice
			}
			if p.RawPrice > s.PrixMax {
				s.PrixMax = p.RawPrice
			}
		}
	}
	if priced > 0 {
		s.PrixMoyen = int64(math.Round(float64(sum) / float64(priced)))
	}
	s.TauxDisponibilite = Percent(s.BiensDisponibles, s.TotalBiens)
	s.TauxOccupation = Percent(s.BiensOccupes, s.TotalBiens)

	clients := make(map[string]struct{}, len(visits))
	for _, v := range visits {
		s.TotalVisites++
		if v.VisiteProg {
			s.VisitesConfirmees++
		}
		switch v.Status {
		case domain.VisitToday:
			s.VisitesAujourdhui++
		case domain.VisitScheduled:
			s.VisitesProgrammees++
		case domain.VisitDone:
			s.VisitesTerminees++
		case domain.VisitPending:
			s.VisitesEnAttente++
		case domain.VisitUnconfirmed:
			s.VisitesNonConfirm++
		}
		if k := normalize.ClientKey(v.Numero, v.NomPrenom); k != "" {
			clients[k] = struct{}{}
		}
	}
	s.TotalClients = len(clients)
	return s
}

// CommuneOf groups a property by commune, else by the first segment of its zone.
func CommuneOf(p domain.Property) string {
	if c := strings.TrimSpace(p.Commune); c != "" {
		return c
	}
	return orOther(normalize.FirstSegment(p.Zone))
}

// Percent is part/total rounded to the nearest integer percent; 0 when total is 0.
func Percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}

// Average is the rounded mean of the known prices, 0 if none is known.
func Average(props []domain.Property) int64 {
	var sum, n int64
	for _, p := range props {
		if p.RawPrice > 0 {
			sum += p.RawPrice
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return int64(math.Round(float64(sum) / float64(n)))
}

func bedroomLabel(n int) string {
	if n <= 0 {
		return "N/A"
	}
	return strconv.Itoa(n) + " ch."
}

func orOther(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return other
	}
	return s
}
