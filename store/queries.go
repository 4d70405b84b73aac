package store

const schemaVersion = 1

// Types are kept to the subset both Postgres and SQLite accept.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL,
		applied_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		user_id TEXT PRIMARY KEY REFERENCES users(id),
		plan TEXT NOT NULL,
		status TEXT NOT NULL,
		start_date TIMESTAMP NOT NULL,
		end_date TIMESTAMP NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS seo_scans (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		url TEXT NOT NULL,
		title TEXT NOT NULL,
		meta_description TEXT NULL,
		headings TEXT NOT NULL,
		images TEXT NOT NULL,
		links TEXT NOT NULL,
		issues TEXT NOT NULL,
		score INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS seo_scans_user_created ON seo_scans (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS heat_maps (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		url TEXT NOT NULL,
		keywords TEXT NOT NULL,
		details TEXT NOT NULL,
		total_words INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS heat_maps_user_created ON heat_maps (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS citations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		url TEXT NOT NULL,
		citations TEXT NOT NULL,
		score INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS citations_user_created ON citations (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS google_auth_states (
		state TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		created_at TIMESTAMP NOT NULL
	)`,
}

const (
	selectSchemaVersion = `SELECT COALESCE(MAX(version), 0) FROM schema_version`
	insertSchemaVersion = `INSERT INTO schema_version (version, applied_at) VALUES (?, ?)`

	insertUser = `INSERT INTO users (id, email, name, password_hash, created_at)
					VALUES (?, ?, ?, ?, ?)`
	selectUserByEmail = `SELECT id, email, name, password_hash, created_at FROM users WHERE email = ?`
	selectUserByID    = `SELECT id, email, name, password_hash, created_at FROM users WHERE id = ?`

	insertSubscription = `INSERT INTO subscriptions (user_id, plan, status, start_date, end_date, updated_at)
					VALUES (?, ?, ?, ?, ?, ?)`
	upsertSubscription = `INSERT INTO subscriptions (user_id, plan, status, start_date, end_date, updated_at)
					VALUES (?, ?, ?, ?, ?, ?)
					ON CONFLICT (user_id) DO UPDATE SET
						plan = excluded.plan,
						status = excluded.status,
						start_date = excluded.start_date,
						end_date = excluded.end_date,
						updated_at = excluded.updated_at`
	updateSubscriptionStatus = `UPDATE subscriptions SET status = ?, end_date = ?, updated_at = ? WHERE user_id = ?`
	selectSubscription       = `SELECT user_id, plan, status, start_date, end_date FROM subscriptions WHERE user_id = ?`

	insertSeoScan = `INSERT INTO seo_scans
					(id, user_id, url, title, meta_description, headings, images, links, issues, score, created_at)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	selectSeoScans = `SELECT id, user_id, url, title, meta_description, headings, images, links, issues, score, created_at
					FROM seo_scans WHERE user_id = ? AND created_at >= ? ORDER BY created_at DESC, id DESC`

	insertHeatMap = `INSERT INTO heat_maps (id, user_id, url, keywords, details, total_words, created_at)
					VALUES (?, ?, ?, ?, ?, ?, ?)`
	selectHeatMaps = `SELECT id, user_id, url, keywords, details, total_words, created_at
					FROM heat_maps WHERE user_id = ? AND created_at >= ? ORDER BY created_at DESC, id DESC`

	insertCitationCheck = `INSERT INTO citations (id, user_id, url, citations, score, created_at)
					VALUES (?, ?, ?, ?, ?, ?)`
	selectCitationChecks = `SELECT id, user_id, url, citations, score, created_at
					FROM citations WHERE user_id = ? AND created_at >= ? ORDER BY created_at DESC, id DESC`

	// %s is one of the result tables, never user input.
	countResultsSince = `SELECT COUNT(*) FROM %s WHERE user_id = ? AND created_at >= ?`

	insertNotification = `INSERT INTO notifications (id, user_id, type, title, message, is_read, created_at)
					VALUES (?, ?, ?, ?, ?, ?, ?)`
	selectNotifications = `SELECT id, user_id, type, title, message, is_read, created_at
					FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	markNotificationRead = `UPDATE notifications SET is_read = ? WHERE id = ? AND user_id = ?`
	selectNotification   = `SELECT id, user_id, type, title, message, is_read, created_at
					FROM notifications WHERE id = ? AND user_id = ?`

	insertProject = `INSERT INTO projects (id, user_id, name, description, created_at, updated_at)
					VALUES (?, ?, ?, ?, ?, ?)`
	selectProjects = `SELECT id, user_id, name, description, created_at, updated_at
					FROM projects WHERE user_id = ? ORDER BY created_at DESC, id DESC`

	insertGoogleAuthState = `INSERT INTO google_auth_states (state, user_id, created_at) VALUES (?, ?, ?)`
	selectGoogleAuthState = `SELECT state, user_id, created_at FROM google_auth_states WHERE state = ?`
)
