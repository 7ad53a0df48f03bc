// Package his is the REST client for the HIS portal backend.
//
// One Client serves every driven port that talks to the backend:
//   - SuggestionSource and DropdownSource over /professions
//   - PatientDirectory over /patients, via Client.Patients
//   - RecordStore over the collection path of each form, via Client.Records
//
// Requests carry a bearer token from a driven.TokenProvider, an X-Request-ID
// header and pass through a token-bucket rate limiter that backs off on 429.
package his
