package sqlite

const schema = `
BEGIN TRANSACTION;

CREATE TABLE
	IF NOT EXISTS users (
		id TEXT NOT NULL,
		alias TEXT NOT NULL CHECK (length ("alias") >= 3 AND length ("alias") <= 20) UNIQUE,
		name TEXT,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		photo_url TEXT,
		created datetime NOT NULL,
		updated datetime NOT NULL,
		PRIMARY KEY ("id")
	);

CREATE UNIQUE INDEX IF NOT EXISTS "Alias Index" ON "users" ("alias" ASC);

CREATE TABLE
	IF NOT EXISTS artworks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		picture_url TEXT NOT NULL,
		author_id TEXT NOT NULL,
		added datetime NOT NULL,
		updated datetime NOT NULL,
		FOREIGN KEY (author_id) REFERENCES users (id)
	);

CREATE TABLE
	IF NOT EXISTS artwork_tags (
		artwork TEXT NOT NULL,
		position INTEGER NOT NULL,
		tag TEXT NOT NULL,
		PRIMARY KEY (artwork, position),
		FOREIGN KEY (artwork) REFERENCES artworks (id) ON DELETE CASCADE
	);

CREATE TABLE
	IF NOT EXISTS search_index (
		artwork TEXT NOT NULL,
		token TEXT NOT NULL,
		PRIMARY KEY (artwork, token),
		FOREIGN KEY (artwork) REFERENCES artworks (id) ON DELETE CASCADE
	);

CREATE INDEX IF NOT EXISTS "Token Index" ON "search_index" ("token" ASC);

CREATE TABLE
	IF NOT EXISTS artwork_likes (
		artwork TEXT NOT NULL,
		user TEXT NOT NULL,
		date datetime NOT NULL,
		PRIMARY KEY (artwork, user),
		FOREIGN KEY (artwork) REFERENCES artworks (id) ON DELETE CASCADE,
		FOREIGN KEY (user) REFERENCES users (id)
	);

CREATE TABLE
	IF NOT EXISTS artwork_comments (
		id TEXT PRIMARY KEY,
		artwork TEXT NOT NULL,
		user TEXT NOT NULL,
		comment TEXT NOT NULL,
		date datetime NOT NULL,
		FOREIGN KEY (artwork) REFERENCES artworks (id) ON DELETE CASCADE,
		FOREIGN KEY (user) REFERENCES users (id)
	);

CREATE INDEX IF NOT EXISTS "Comment Date Index" ON "artwork_comments" ("artwork", "date" DESC);

CREATE TABLE
	IF NOT EXISTS artwork_views (
		artwork TEXT NOT NULL,
		user TEXT NOT NULL,
		date datetime NOT NULL,
		PRIMARY KEY (artwork, user),
		FOREIGN KEY (artwork) REFERENCES artworks (id) ON DELETE CASCADE,
		FOREIGN KEY (user) REFERENCES users (id)
	);

CREATE TABLE
	IF NOT EXISTS donations (
		id TEXT PRIMARY KEY,
		artist TEXT NOT NULL,
		donor TEXT,
		amount REAL NOT NULL,
		currency TEXT NOT NULL,
		status TEXT NOT NULL,
		date datetime NOT NULL,
		FOREIGN KEY (artist) REFERENCES users (id)
	);

COMMIT;
`
