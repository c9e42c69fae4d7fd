package postgresql

// migrations returns the ordered schema migrations for the sync store.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflows (
				id VARCHAR(255) PRIMARY KEY,
				name TEXT NOT NULL,
				active BOOLEAN NOT NULL DEFAULT FALSE,
				nodes JSONB NOT NULL DEFAULT '[]',
				connections JSONB NOT NULL DEFAULT '{}',
				settings JSONB,
				pin_data JSONB,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			-- Names are the reconciliation key; the unique index turns the
			-- find-then-create race into a storage-level conflict.
			CREATE UNIQUE INDEX idx_workflows_name ON workflows(name);
			CREATE INDEX idx_workflows_updated_at ON workflows(updated_at);
		`,
		2: `
			CREATE TABLE users (
				id VARCHAR(255) PRIMARY KEY,
				email VARCHAR(255) NOT NULL,
				first_name VARCHAR(255),
				last_name VARCHAR(255),
				role VARCHAR(50) NOT NULL,
				password TEXT,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE UNIQUE INDEX idx_users_email ON users(LOWER(email));
			CREATE INDEX idx_users_role ON users(role);

			CREATE TABLE projects (
				id VARCHAR(255) PRIMARY KEY,
				name TEXT NOT NULL,
				type VARCHAR(50) NOT NULL,
				owner_id VARCHAR(255) NOT NULL REFERENCES users(id),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE UNIQUE INDEX idx_projects_personal_owner ON projects(owner_id) WHERE type = 'personal';
		`,
	}
}
