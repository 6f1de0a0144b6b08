package mysql

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Column names are the ones the normalizer aliases first; rows are scanned
// generically so new columns flow through without touching the repo.
const selectPropertiesSQL = `
SELECT
  id,
  ref_bien,
  publication_id,
  content_hash,
  type_de_bien,
  type_offre,
  zone_geographique,
  commune,
  quartier,
  prix,
  disponible,
  meubles,
  chambre,
  date_publication,
  publie_par,
  expediteur,
  telephone_expediteur,
  telephone_bien,
  groupe_whatsapp_origine,
  lien_image,
  caracteristiques,
  message_initial,
  latitude,
  longitude
FROM locaux
ORDER BY date_publication DESC, id DESC
`

const selectVisitsSQL = `
SELECT id, nom_prenom, numero, date_rv, local_interesse, ref_bien, visite_prog
FROM visite_programmee
ORDER BY id
`

const selectPublicationsSQL = `
SELECT id, message, groupe, telephone, expediteur, nom_groupe, horodatage
FROM publications
ORDER BY horodatage DESC, id DESC
LIMIT ?
`

const selectImagesSQL = `
SELECT id, publication_id, lien_image, lien_thumb, image_order, message_id, horodatage
FROM images
WHERE publication_id IS NOT NULL
ORDER BY publication_id, image_order, id
LIMIT 2000
`

const selectPipelineSQL = `
SELECT visit_id, stage
FROM pipeline_status
`

const selectGroupsSQL = `
SELECT jid, name
FROM whatsapp_groups
WHERE name IS NOT NULL AND name <> ''
`

const findUserSQL = `
SELECT id, email, name, role, password_hash
FROM users
WHERE email = ?
`

// -----------------------------------------------------------------------------
// WRITES
// -----------------------------------------------------------------------------

const upsertPipelineSQL = `
INSERT INTO pipeline_status (visit_id, stage)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE
  stage      = VALUES(stage),
  updated_at = CURRENT_TIMESTAMP
`

const upsertUserSQL = `
INSERT INTO users (email, name, role, password_hash)
VALUES (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name          = VALUES(name),
  role          = VALUES(role),
  password_hash = COALESCE(VALUES(password_hash), users.password_hash)
`

const upsertGroupSQL = `
INSERT INTO whatsapp_groups (jid, name)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE name = VALUES(name)
`
