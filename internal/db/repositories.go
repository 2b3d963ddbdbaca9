package db

// Repositories provides access to all database repositories
type Repositories struct {
	Channels       *ChannelRepository
	Media          *MediaRepository
	PlaylistState  *PlaylistStateRepository
	SavedPlaylists *SavedPlaylistRepository
	Entitlements   *EntitlementRepository
}

// NewRepositories creates a new repository collection
func NewRepositories(db *DB) *Repositories {
	return &Repositories{
		Channels:       NewChannelRepository(db),
		Media:          NewMediaRepository(db),
		PlaylistState:  NewPlaylistStateRepository(db),
		SavedPlaylists: NewSavedPlaylistRepository(db),
		Entitlements:   NewEntitlementRepository(db),
	}
}
