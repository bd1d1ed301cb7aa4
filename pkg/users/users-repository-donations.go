package users

import (
	"github.com/artistry/webapi/pkg/ntime"
	"github.com/artistry/webapi/pkg/rest"
)

// AddDonation records a completed donation under the receiving artist. The amounts
// were settled by the external checkout collaborator; this is bookkeeping only.
func (ur *userRepository) AddDonation(artistAlias string, data DonationData) error {
	res, err := ur.Connection.Exec(`
		INSERT INTO donations (id, artist, donor, amount, currency, status, date)
		SELECT ?, id, ?, ?, ?, ?, ? FROM users WHERE alias = ?`,
		rest.MustGetNewUUID(),
		data.Donor,
		data.Amount,
		data.Currency,
		data.Status,
		ntime.Now(),
		artistAlias,
	)
	if err != nil {
		return err
	}

	// when no rows are affected, no user matches the target alias
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows != 1 {
		return ErrNotFound
	}
	return nil
}

func (ur *userRepository) GetDonations(userId string) ([]DonationResponse, error) {

	// initialise an empty slice to avoid null serialisation
	var donations = make([]DonationResponse, 0)
	rows, err := ur.Connection.Query(`
		SELECT id, coalesce(donor, ''), amount, currency, status, date
		FROM donations WHERE artist = ? ORDER BY date DESC`,
		userId,
	)
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		var donation DonationResponse
		if err = rows.Scan(&donation.Id, &donation.Donor, &donation.Amount,
			&donation.Currency, &donation.Status, &donation.Date); err != nil {
			return donations, err
		}
		donations = append(donations, donation)
	}

	if err = rows.Err(); err != nil {
		return donations, err
	}
	if err = rows.Close(); err != nil {
		return donations, err
	}

	return donations, nil
}

// GetAnalytics recomputes the artist's roll-up figures from their source tables on
// every request. Stored counters are treated as caches and never summed here, since
// partially failed updates can leave them stale.
func (ur *userRepository) GetAnalytics(userId string) (data AnalyticsData, err error) {
	return data, ur.Connection.QueryRow(`
		SELECT
			(SELECT count(*) FROM artwork_views WHERE artwork IN (SELECT id FROM artworks WHERE author_id = ?)),
			(SELECT count(*) FROM artwork_likes WHERE artwork IN (SELECT id FROM artworks WHERE author_id = ?)),
			(SELECT count(*) FROM artwork_comments WHERE artwork IN (SELECT id FROM artworks WHERE author_id = ?)),
			(SELECT coalesce(sum(amount), 0) FROM donations WHERE artist = ? AND status = 'success')`,
		userId, userId, userId, userId,
	).Scan(&data.Views, &data.Likes, &data.Comments, &data.Earnings)
}
