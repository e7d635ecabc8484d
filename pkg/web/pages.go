package web

type Page struct {
	Path     string
	Name     string
	Title    string
	Template string
}

var Pages = []Page{
	{Path: "/", Name: "list", Title: "List", Template: "list"},
	{Path: "/leaderboard", Name: "leaderboard", Title: "Leaderboard", Template: "leaderboard"},
	{Path: "/roulette", Name: "roulette", Title: "Roulette", Template: "roulette"},
	{Path: "/list-packs", Name: "packs", Title: "List Packs", Template: "packs"},
	{Path: "/submit", Name: "submit", Title: "Submit", Template: "submit"},
}

// PageFor returns the page mounted at path.
func PageFor(path string) (Page, bool) {
	for _, p := range Pages {
		if p.Path == path {
			return p, true
		}
	}
	return Page{}, false
}

func mustPage(name string) Page {
	for _, p := range Pages {
		if p.Name == name {
			return p
		}
	}
	panic("unknown page " + name)
}
