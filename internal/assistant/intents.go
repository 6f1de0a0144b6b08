package assistant

import "strings"

func isGreeting(q Query) bool {
	return len(strings.Fields(q.Text)) <= 3 &&
		hasWord(q.Text, "bonjour", "bonsoir", "salut", "hello", "coucou", "hey", "bjr", "slt")
}

func isHelp(q Query) bool {
	return hasWord(q.Text, "aide", "help", "que peux tu", "que sais tu", "comment ca marche", "commandes")
}

func isSummary(q Query) bool {
	return hasWord(q.Text, "resume", "portefeuille", "tableau de bord", "dashboard", "synthese", "bilan", "statistique", "stats", "apercu")
}

func isVisits(q Query) bool {
	return hasWord(q.Text, "visite", "rendez vous", "rdv", "agenda", "planning")
}

func isRequests(q Query) bool {
	return hasWord(q.Text, "demande", "requete", "message", "whatsapp")
}

// bare "client" is not a pipeline word: "villa pour un client" is a search.
func isPipeline(q Query) bool {
	return hasWord(q.Text, "pipeline", "prospect", "lead", "negociation", "offres en cours", "suivi commercial")
}

func isZones(q Query) bool {
	return hasWord(q.Text, "par commune", "par zone", "par quartier", "communes", "zones", "quartiers", "repartition")
}

// The average only answers unfiltered questions; "prix moyen des villas"
// falls through to search, which appends the average of its matches.
func isPriceAverage(q Query) bool {
	if q.Filtered() {
		return false
	}
	return hasWord(q.Text, "prix", "moyen", "moyenne", "combien coute", "cout", "valeur", "budget", "tarif")
}

func isRecent(q Query) bool {
	return hasWord(q.Text, "recent", "dernier", "derniere", "nouveau", "nouveaux", "nouvelle", "nouveaute")
}

func isSearch(q Query) bool {
	if q.Filtered() {
		return true
	}
	return hasWord(q.Text, "cherche", "recherche", "trouve", "voir", "montre", "avez", "tu as", "vous avez", "liste", "propose", "louer", "acheter")
}

func isCount(q Query) bool {
	return hasWord(q.Text, "combien", "nombre", "total", "stock", "inventaire", "disponible")
}

func isPoliteness(q Query) bool {
	return hasWord(q.Text, "merci", "super", "parfait", "genial", "top", "cool", "d accord", "ok", "bravo", "au revoir", "bonne journee")
}
