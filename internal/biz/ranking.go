package biz

// AssignRankings sets Ranking on movies ordered by ascending rating, so the
// last (highest rated) movie gets 1 and the first gets len(movies).
func AssignRankings(movies []*Movie) {
	n := len(movies)
	for i, m := range movies {
		rank := n - i
		m.Ranking = &rank
	}
}
