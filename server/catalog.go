package server

// defaultCatalogJSON is the catalog served when no document is supplied.
// Deployments override it with WithCatalogJSON.
var defaultCatalogJSON = []byte(`{
  "services": [
    {
      "id": "servicebroker-default",
      "name": "servicebroker",
      "description": "Managed resource instances with per-application bindings",
      "bindable": true,
      "plans": [
        {
          "id": "servicebroker-default-free",
          "name": "free",
          "description": "Default plan",
          "free": true
        }
      ]
    }
  ]
}`)
