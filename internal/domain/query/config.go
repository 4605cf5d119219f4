package query

import "time"

// Config holds runtime knobs for the resolution pipeline.
type Config struct {
	Schema         string
	TenantParam    string
	EmbeddingParam string
	StageTimeout   time.Duration
	BlockMutations bool
	MaxRows        int
}

const (
	defaultTenantParam    = "user_id"
	defaultEmbeddingParam = "query_embedding"
	defaultMaxRows        = 100
	defaultStageTimeout   = 20 * time.Second
)

// WithDefaults fills zero values.
func (c Config) WithDefaults() Config {
	if c.Schema == "" {
		c.Schema = DefaultSchema
	}
	if c.TenantParam == "" {
		c.TenantParam = defaultTenantParam
	}
	if c.EmbeddingParam == "" {
		c.EmbeddingParam = defaultEmbeddingParam
	}
	if c.StageTimeout <= 0 {
		c.StageTimeout = defaultStageTimeout
	}
	if c.MaxRows <= 0 {
		c.MaxRows = defaultMaxRows
	}
	return c
}

// DefaultSchema describes the invoice tables to the synthesizer.
const DefaultSchema = `Database Schema:

Table: users
- id (SERIAL PRIMARY KEY)
- whatsapp_number (VARCHAR(20), UNIQUE)
- name (VARCHAR(255))
- email (VARCHAR(255))
- is_active (BOOLEAN)
- created_at (TIMESTAMP WITH TIME ZONE)

Table: invoices
- id (SERIAL PRIMARY KEY)
- user_id (INTEGER, FOREIGN KEY to users.id)
- invoice_number (VARCHAR(100))
- invoice_date (DATE)
- vendor (VARCHAR(255))
- total_amount (DECIMAL(10,2))
- tax_amount (DECIMAL(10,2))
- currency (VARCHAR(10))
- file_url (TEXT)
- file_content_type (VARCHAR(100))
- notes (TEXT)
- created_at (TIMESTAMP WITH TIME ZONE)
- updated_at (TIMESTAMP WITH TIME ZONE)

Table: items
- id (SERIAL PRIMARY KEY)
- invoice_id (INTEGER, FOREIGN KEY to invoices.id)
- description (TEXT)
- quantity (DECIMAL(10,2))
- unit_price (DECIMAL(10,2))
- total_price (DECIMAL(10,2))
- item_category (VARCHAR(100))
- item_code (VARCHAR(100))
- description_embedding (VECTOR(1536))
- created_at (TIMESTAMP WITH TIME ZONE)
- updated_at (TIMESTAMP WITH TIME ZONE)

Table: invoice_embeddings
- id (SERIAL PRIMARY KEY)
- invoice_id (INTEGER, FOREIGN KEY to invoices.id)
- content_text (TEXT)
- embedding (VECTOR(1536))
- created_at (TIMESTAMP WITH TIME ZONE)

Relationships:
- users -> invoices (one-to-many)
- invoices -> items (one-to-many)
- invoices -> invoice_embeddings (one-to-many)

Vector search:
- Compare item descriptions with description_embedding <-> '[:query_embedding]'::vector
- Lower distance means a closer match; 1 - (a <=> b) gives a similarity in [0,1]

IMPORTANT SECURITY REQUIREMENTS:
- ALWAYS filter queries with WHERE invoices.user_id = :user_id
- NEVER return data that belongs to another user
- Only SELECT statements are allowed`

// TenantScopeHint is passed to the synthesizer alongside the schema.
func (c Config) TenantScopeHint() string {
	return "Every query must restrict invoices with invoices.user_id = :" + c.TenantParam + "."
}
